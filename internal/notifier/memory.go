package notifier

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
)

// MemoryQueue is an in-process AlertQueue.
type MemoryQueue struct {
	mu     sync.Mutex
	alerts map[string]models.PendingAlert
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{alerts: make(map[string]models.PendingAlert)}
}

// NewMemoryNotifier returns a notifier whose alerts live only in memory.
func NewMemoryNotifier(message string) *QueueNotifier {
	return NewQueueNotifier(NewMemoryQueue(), message)
}

func (q *MemoryQueue) UpsertAlert(ctx context.Context, alert models.PendingAlert) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	alert.DeliveredAt = nil
	q.alerts[alert.ID] = alert
	return nil
}

func (q *MemoryQueue) DeleteAlert(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.alerts, id)
	return nil
}

func (q *MemoryQueue) ListAlerts(ctx context.Context, includeDelivered bool) ([]models.PendingAlert, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.PendingAlert, 0, len(q.alerts))
	for _, a := range q.alerts {
		if a.DeliveredAt == nil || includeDelivered {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

func (q *MemoryQueue) MarkAlertDelivered(ctx context.Context, id string, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	a, ok := q.alerts[id]
	if !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	a.DeliveredAt = &at
	q.alerts[id] = a
	return nil
}
