// Package notifier arms daily alerts in a durable queue and delivers them
// when they come due.
package notifier

import (
	"context"
	"time"

	apperrors "github.com/julianstephens/dayprompt/internal/errors"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/storage"
)

// QueueNotifier arms alerts by writing them to an AlertQueue. Delivery
// happens later, in Dispatcher.
type QueueNotifier struct {
	queue   storage.AlertQueue
	message string
}

func NewQueueNotifier(queue storage.AlertQueue, message string) *QueueNotifier {
	return &QueueNotifier{queue: queue, message: message}
}

// Schedule replaces any alert with the same id.
func (n *QueueNotifier) Schedule(ctx context.Context, id string, fireAt time.Time) error {
	if err := n.queue.DeleteAlert(ctx, id); err != nil {
		return &apperrors.SchedulingError{AlertID: id, Err: err}
	}
	alert := models.PendingAlert{ID: id, FireAt: fireAt, Message: n.message}
	if err := n.queue.UpsertAlert(ctx, alert); err != nil {
		return &apperrors.SchedulingError{AlertID: id, Err: err}
	}
	return nil
}

func (n *QueueNotifier) Cancel(ctx context.Context, id string) error {
	if err := n.queue.DeleteAlert(ctx, id); err != nil {
		return &apperrors.SchedulingError{AlertID: id, Err: err}
	}
	return nil
}

// ListPending returns the undelivered alerts.
func (n *QueueNotifier) ListPending(ctx context.Context) ([]models.PendingAlert, error) {
	return n.queue.ListAlerts(ctx, false)
}
