package notifier

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/julianstephens/dayprompt/internal/errors"
	"github.com/julianstephens/dayprompt/internal/models"
)

var base = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

// failingQueue rejects every write.
type failingQueue struct{ *MemoryQueue }

func (failingQueue) UpsertAlert(context.Context, models.PendingAlert) error {
	return errors.New("disk full")
}

func TestQueueNotifierKeepsOneAlertPerID(t *testing.T) {
	ctx := context.Background()
	n := NewMemoryNotifier("How was your day?")

	if err := n.Schedule(ctx, "dayprompt.daily.2026-03-10", base); err != nil {
		t.Fatal(err)
	}
	if err := n.Schedule(ctx, "dayprompt.daily.2026-03-11", base.Add(24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	later := base.Add(3 * time.Hour)
	if err := n.Schedule(ctx, "dayprompt.daily.2026-03-10", later); err != nil {
		t.Fatal(err)
	}

	pending, err := n.ListPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != "dayprompt.daily.2026-03-10" || !pending[0].FireAt.Equal(later) {
		t.Errorf("first alert = %+v, want latest fire time", pending[0])
	}
	if pending[0].Message != "How was your day?" {
		t.Errorf("message = %q", pending[0].Message)
	}

	if err := n.Cancel(ctx, "dayprompt.daily.2026-03-10"); err != nil {
		t.Fatal(err)
	}
	if pending, _ := n.ListPending(ctx); len(pending) != 1 {
		t.Errorf("pending after cancel = %d, want 1", len(pending))
	}
}

func TestQueueNotifierWrapsFailures(t *testing.T) {
	n := NewQueueNotifier(failingQueue{NewMemoryQueue()}, "m")
	err := n.Schedule(context.Background(), "x", base)
	if !errors.Is(err, apperrors.ErrScheduling) {
		t.Errorf("Schedule() error = %v, want scheduling error", err)
	}
	var se *apperrors.SchedulingError
	if !errors.As(err, &se) || se.AlertID != "x" {
		t.Errorf("error does not carry the alert id: %v", err)
	}
}

func TestDispatchDue(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryQueue()
	for _, a := range []models.PendingAlert{
		{ID: "due", FireAt: base.Add(-time.Minute), Message: "due now"},
		{ID: "future", FireAt: base.Add(time.Hour), Message: "later"},
		{ID: "stale", FireAt: base.Add(-2 * time.Hour), Message: "too old"},
	} {
		if err := queue.UpsertAlert(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	var sent []string
	sender := SenderFunc(func(_ context.Context, text string) error {
		sent = append(sent, text)
		return nil
	})
	d := NewDispatcher(queue, sender, 30*time.Minute)

	report, err := d.DispatchDue(ctx, base)
	if err != nil {
		t.Fatal(err)
	}
	if report != (DispatchReport{Sent: 1, Stale: 1}) {
		t.Errorf("report = %+v", report)
	}
	if len(sent) != 1 || sent[0] != "due now" {
		t.Errorf("sent = %v", sent)
	}

	// Nothing is sent twice.
	report, _ = d.DispatchDue(ctx, base.Add(time.Minute))
	if report != (DispatchReport{}) {
		t.Errorf("second report = %+v", report)
	}

	pending, _ := queue.ListAlerts(ctx, false)
	if len(pending) != 1 || pending[0].ID != "future" {
		t.Errorf("pending = %+v", pending)
	}
}

func TestDispatchDueRetriesFailedSendsLater(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryQueue()
	if err := queue.UpsertAlert(ctx, models.PendingAlert{ID: "a", FireAt: base, Message: "m"}); err != nil {
		t.Fatal(err)
	}

	fail := true
	sender := SenderFunc(func(context.Context, string) error {
		if fail {
			return errors.New("tray not running")
		}
		return nil
	})
	d := NewDispatcher(queue, sender, 30*time.Minute)

	report, err := d.DispatchDue(ctx, base)
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}

	fail = false
	report, _ = d.DispatchDue(ctx, base.Add(time.Minute))
	if report.Sent != 1 {
		t.Errorf("retry report = %+v", report)
	}
}

func TestRetrying(t *testing.T) {
	calls := 0
	r := &Retrying{
		Sender: SenderFunc(func(context.Context, string) error {
			calls++
			if calls < 3 {
				return errors.New("flaky")
			}
			return nil
		}),
		Attempts: 3,
		Delay:    time.Millisecond,
	}
	if err := r.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	calls = -10
	if err := r.Send(context.Background(), "hi"); err == nil || !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("Send() error = %v, want exhaustion error", err)
	}
}

func TestDryRunSender(t *testing.T) {
	var buf bytes.Buffer
	if err := (DryRunSender{Out: &buf}).Send(context.Background(), "How was your day?"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[DryRun] How was your day?\n" {
		t.Errorf("output = %q", buf.String())
	}
}
