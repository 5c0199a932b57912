package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/notifier"
	"github.com/julianstephens/dayprompt/internal/storage"
)

// newSender builds the real delivery path. Tests replace it.
var newSender = func() notifier.Sender {
	return notifier.WithRetries(notifier.NewTraySender())
}

type NotifyCmd struct {
	DryRun bool `help:"Print due notifications to stdout instead of sending them. The queue is left untouched."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()

	settings, err := ctx.Settings(rctx)
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled {
		if c.DryRun {
			ctx.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	var (
		queue  storage.AlertQueue = ctx.Store
		sender                    = newSender()
	)
	if c.DryRun {
		if queue, err = snapshotQueue(rctx, ctx.Store); err != nil {
			return err
		}
		sender = notifier.DryRunSender{Out: ctx.Writer()}
	}

	report, err := notifier.NewDispatcher(queue, sender, constants.NotifyGracePeriod).DispatchDue(rctx, ctx.Now())
	if err != nil {
		return err
	}

	if c.DryRun {
		ctx.Printf("%d due, %d stale\n", report.Sent, report.Stale)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d notification(s) could not be delivered and remain queued", report.Failed)
	}
	return nil
}

// snapshotQueue copies the undelivered alerts into memory so a dry run never
// marks anything delivered.
func snapshotQueue(ctx context.Context, src storage.AlertQueue) (*notifier.MemoryQueue, error) {
	alerts, err := src.ListAlerts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	q := notifier.NewMemoryQueue()
	for _, a := range alerts {
		if err := q.UpsertAlert(ctx, a); err != nil {
			return nil, err
		}
	}
	return q, nil
}
