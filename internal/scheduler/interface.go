package scheduler

import (
	"context"
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
)

// EntryStore persists the whole entry collection. SaveEntries replaces the
// stored collection; entries absent from it are deleted.
//
// WithLock runs fn while holding a lock that every process sharing the store
// respects. Store calls made with the ctx handed to fn happen under that
// lock, and an error from fn abandons their writes where the backend is
// transactional.
type EntryStore interface {
	LoadEntries(ctx context.Context) ([]models.DayEntry, error)
	SaveEntries(ctx context.Context, entries []models.DayEntry) error
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// StateStore persists the engine's anchor state.
type StateStore interface {
	LoadState(ctx context.Context) (models.SchedulerState, error)
	SaveState(ctx context.Context, state models.SchedulerState) error
}

// Notifier arms one-shot alerts by id. Schedule replaces any pending alert
// with the same id, so at most one exists per id.
type Notifier interface {
	Schedule(ctx context.Context, id string, fireAt time.Time) error
	Cancel(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]models.PendingAlert, error)
}

// RandSource draws the daily fire time. *rand.Rand from math/rand/v2
// satisfies it.
type RandSource interface {
	IntN(n int) int
}
