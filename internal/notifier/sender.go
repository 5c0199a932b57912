package notifier

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/logger"
)

// Sender shows one notification to the user.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, text string) error

func (f SenderFunc) Send(ctx context.Context, text string) error { return f(ctx, text) }

// DryRunSender prints notifications instead of delivering them.
type DryRunSender struct {
	Out io.Writer
}

func (s DryRunSender) Send(ctx context.Context, text string) error {
	_, err := fmt.Fprintf(s.Out, "[DryRun] %s\n", text)
	return err
}

// Retrying wraps a sender with a fixed number of attempts.
type Retrying struct {
	Sender   Sender
	Attempts int
	Delay    time.Duration
}

func WithRetries(s Sender) *Retrying {
	return &Retrying{Sender: s, Attempts: constants.NotifyMaxRetries, Delay: constants.NotifyRetryDelay}
}

func (r *Retrying) Send(ctx context.Context, text string) error {
	var err error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		if err = r.Sender.Send(ctx, text); err == nil {
			return nil
		}
		logger.Debug("Notification attempt failed", "attempt", attempt, "error", err)
		if attempt == r.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.Delay):
		}
	}
	return fmt.Errorf("notification failed after %d attempts: %w", r.Attempts, err)
}
