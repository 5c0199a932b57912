package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

func TestInitSeedsDefaultSettings(t *testing.T) {
	store := setupTestStore(t)
	settings, err := store.GetSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(context.Background()); err == nil {
		t.Error("Load() on a missing database should fail")
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	first := NewStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatal(err)
	}
	s := models.DefaultSettings()
	s.PromptText = "Anything to note?"
	if err := first.SaveSettings(ctx, s); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer second.Close()
	got, err := second.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.PromptText != "Anything to note?" {
		t.Errorf("PromptText = %q", got.PromptText)
	}

	// Init on an existing database is idempotent and keeps settings.
	if err := second.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := second.GetSettings(ctx); got.PromptText != "Anything to note?" {
		t.Error("Init overwrote saved settings")
	}
}

func TestSaveSettingsRejectsInvalid(t *testing.T) {
	store := setupTestStore(t)
	s := models.DefaultSettings()
	s.EndHour = s.StartHour
	if err := store.SaveSettings(context.Background(), s); err == nil {
		t.Error("SaveSettings accepted an empty window")
	}
}

func TestEntriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	loc := time.FixedZone("test", -5*3600)
	open := time.Date(2026, 3, 10, 18, 30, 0, 0, loc)
	answeredAt := open.Add(4 * time.Minute)
	entries := []models.DayEntry{
		{
			ID: "b", Day: "2026-03-10", ScheduledAt: open, ExpiresAt: open.Add(10 * time.Minute),
			Status: models.EntryStatusAnswered, Text: ptr("good day"), Mood: ptr(models.MoodGood),
			Score: ptr(7), AnsweredAt: &answeredAt, CreatedAt: open, UpdatedAt: answeredAt,
		},
		{
			ID: "a", Day: "2026-03-09", ScheduledAt: open.AddDate(0, 0, -1), ExpiresAt: open.AddDate(0, 0, -1).Add(time.Minute),
			Status: models.EntryStatusMissed, AllowEarlyAnswer: true, CreatedAt: open, UpdatedAt: open,
		},
	}
	if err := store.SaveEntries(ctx, entries); err != nil {
		t.Fatalf("SaveEntries() error = %v", err)
	}

	got, err := store.LoadEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Day != "2026-03-09" {
		t.Fatalf("LoadEntries() = %+v, want 2 entries ordered by day", got)
	}

	answered := got[1]
	if answered.Text == nil || *answered.Text != "good day" || *answered.Mood != models.MoodGood || *answered.Score != 7 {
		t.Errorf("response fields lost: %+v", answered)
	}
	if !answered.ScheduledAt.Equal(open) || answered.AnsweredAt == nil || !answered.AnsweredAt.Equal(answeredAt) {
		t.Errorf("timestamps lost: %+v", answered)
	}
	if !got[0].AllowEarlyAnswer || got[0].Text != nil || got[0].Score != nil {
		t.Errorf("missed entry = %+v", got[0])
	}
}

func TestSaveEntriesReplacesCollection(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	entry := func(id, day string) models.DayEntry {
		return models.DayEntry{ID: id, Day: day, ScheduledAt: now, ExpiresAt: now.Add(time.Minute),
			Status: models.EntryStatusPending, CreatedAt: now, UpdatedAt: now}
	}

	if err := store.SaveEntries(ctx, []models.DayEntry{entry("1", "2026-03-10"), entry("2", "2026-03-11")}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveEntries(ctx, []models.DayEntry{entry("3", "2026-03-12")}); err != nil {
		t.Fatal(err)
	}
	got, _ := store.LoadEntries(ctx)
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("collection = %+v, want only entry 3", got)
	}

	// A duplicate day violates the unique index and leaves the previous save intact.
	err := store.SaveEntries(ctx, []models.DayEntry{entry("4", "2026-03-13"), entry("5", "2026-03-13")})
	if err == nil {
		t.Fatal("duplicate day accepted")
	}
	got, _ = store.LoadEntries(ctx)
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("failed save was not rolled back: %+v", got)
	}
}

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	state, err := store.LoadState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state != (models.SchedulerState{}) {
		t.Errorf("fresh state = %+v", state)
	}

	ts := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	want := models.SchedulerState{LastPlanDayKey: "2026-03-10", LastPlanTimestamp: &ts, FirstPlanDate: "2026-03-01"}
	if err := store.SaveState(ctx, want); err != nil {
		t.Fatal(err)
	}
	want.FirstPlanDate = "2026-02-01"
	if err := store.SaveState(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastPlanDayKey != want.LastPlanDayKey || got.FirstPlanDate != "2026-02-01" || !got.LastPlanTimestamp.Equal(ts) {
		t.Errorf("state = %+v, want %+v", got, want)
	}
}

func TestAlertQueue(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	for _, a := range []models.PendingAlert{
		{ID: "dayprompt.daily.2026-03-11", FireAt: base.Add(24 * time.Hour), Message: "m"},
		{ID: "dayprompt.daily.2026-03-10", FireAt: base, Message: "m"},
	} {
		if err := store.UpsertAlert(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	// Replacing keeps one alert per id.
	moved := base.Add(2 * time.Hour)
	if err := store.UpsertAlert(ctx, models.PendingAlert{ID: "dayprompt.daily.2026-03-10", FireAt: moved, Message: "m"}); err != nil {
		t.Fatal(err)
	}

	alerts, err := store.ListAlerts(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 || alerts[0].ID != "dayprompt.daily.2026-03-10" || !alerts[0].FireAt.Equal(moved) {
		t.Fatalf("alerts = %+v", alerts)
	}

	if err := store.MarkAlertDelivered(ctx, alerts[0].ID, moved); err != nil {
		t.Fatal(err)
	}
	if pending, _ := store.ListAlerts(ctx, false); len(pending) != 1 {
		t.Errorf("undelivered = %d, want 1", len(pending))
	}
	all, _ := store.ListAlerts(ctx, true)
	if len(all) != 2 || all[0].DeliveredAt == nil {
		t.Errorf("all alerts = %+v", all)
	}

	// Re-arming a delivered alert clears the delivery mark.
	if err := store.UpsertAlert(ctx, models.PendingAlert{ID: alerts[0].ID, FireAt: moved.Add(time.Hour), Message: "m"}); err != nil {
		t.Fatal(err)
	}
	if pending, _ := store.ListAlerts(ctx, false); len(pending) != 2 {
		t.Errorf("undelivered after re-arm = %d, want 2", len(pending))
	}

	if err := store.DeleteAlert(ctx, "dayprompt.daily.2026-03-11"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteAlert(ctx, "unknown"); err != nil {
		t.Errorf("DeleteAlert(unknown) = %v", err)
	}
	if err := store.MarkAlertDelivered(ctx, "unknown", moved); err == nil {
		t.Error("MarkAlertDelivered(unknown) should fail")
	}
}

func TestWithLockRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	entry := models.DayEntry{ID: "1", Day: "2026-03-10", ScheduledAt: now, ExpiresAt: now.Add(time.Minute),
		Status: models.EntryStatusPending, CreatedAt: now, UpdatedAt: now}

	boom := errors.New("rejected")
	err := store.WithLock(ctx, func(ctx context.Context) error {
		if err := store.SaveEntries(ctx, []models.DayEntry{entry}); err != nil {
			return err
		}
		if err := store.UpsertAlert(ctx, models.PendingAlert{ID: "a", FireAt: now, Message: "m"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithLock() error = %v, want %v", err, boom)
	}
	if got, _ := store.LoadEntries(ctx); len(got) != 0 {
		t.Errorf("entries = %+v, want the save rolled back", got)
	}
	if alerts, _ := store.ListAlerts(ctx, true); len(alerts) != 0 {
		t.Errorf("alerts = %+v, want the upsert rolled back", alerts)
	}

	if err := store.WithLock(ctx, func(ctx context.Context) error {
		return store.SaveEntries(ctx, []models.DayEntry{entry})
	}); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.LoadEntries(ctx); len(got) != 1 {
		t.Errorf("entries = %d, want 1 after commit", len(got))
	}
}

func TestWithLockSerializesHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")
	first := NewStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second := NewStore(path)
	if err := second.Load(ctx); err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	state := func(day string) models.SchedulerState {
		return models.SchedulerState{LastPlanDayKey: day, FirstPlanDate: "2026-03-01"}
	}

	done := make(chan error, 1)
	err := first.WithLock(ctx, func(ctx context.Context) error {
		go func() {
			done <- second.WithLock(ctx, func(ctx context.Context) error {
				got, err := second.LoadState(ctx)
				if err != nil {
					return err
				}
				if got.LastPlanDayKey != "2026-03-10" {
					return fmt.Errorf("second handle read %q before the first committed", got.LastPlanDayKey)
				}
				return second.SaveState(ctx, state("2026-03-11"))
			})
		}()
		select {
		case err := <-done:
			return fmt.Errorf("second lock taken while the first was held: %v", err)
		case <-time.After(100 * time.Millisecond):
		}
		return first.SaveState(ctx, state("2026-03-10"))
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got, _ := first.LoadState(ctx); got.LastPlanDayKey != "2026-03-11" {
		t.Errorf("LastPlanDayKey = %q, want the second writer last", got.LastPlanDayKey)
	}
}
