package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/dayprompt/internal/logger"
	"github.com/julianstephens/dayprompt/internal/storage"
)

// DispatchReport counts what one DispatchDue call did.
type DispatchReport struct {
	Sent   int
	Stale  int
	Failed int
}

// Dispatcher delivers due alerts from an AlertQueue.
type Dispatcher struct {
	queue  storage.AlertQueue
	sender Sender
	grace  time.Duration
}

// NewDispatcher returns a dispatcher that drops alerts more than grace
// overdue without sending them.
func NewDispatcher(queue storage.AlertQueue, sender Sender, grace time.Duration) *Dispatcher {
	return &Dispatcher{queue: queue, sender: sender, grace: grace}
}

// DispatchDue sends every undelivered alert with a fire time at or before
// now and marks it delivered. A failed send stays queued for the next call.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) (DispatchReport, error) {
	var report DispatchReport

	alerts, err := d.queue.ListAlerts(ctx, false)
	if err != nil {
		return report, fmt.Errorf("listing alerts: %w", err)
	}

	for _, alert := range alerts {
		if !alert.IsDue(now) {
			continue
		}

		if now.Sub(alert.FireAt) > d.grace {
			logger.Info("Dropping stale alert", "id", alert.ID, "fire_at", alert.FireAt)
			if err := d.queue.MarkAlertDelivered(ctx, alert.ID, now); err != nil {
				return report, fmt.Errorf("marking stale alert %s: %w", alert.ID, err)
			}
			report.Stale++
			continue
		}

		if err := d.sender.Send(ctx, alert.Message); err != nil {
			logger.Warn("Failed to deliver alert", "id", alert.ID, "error", err)
			report.Failed++
			continue
		}
		if err := d.queue.MarkAlertDelivered(ctx, alert.ID, now); err != nil {
			return report, fmt.Errorf("marking alert %s delivered: %w", alert.ID, err)
		}
		logger.Info("Alert delivered", "id", alert.ID)
		report.Sent++
	}
	return report, nil
}
