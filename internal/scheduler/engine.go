// Package scheduler plans one prompt window per calendar day, backfills days
// the process never ran for, and serializes every read-modify-write of the
// entry collection.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	apperrors "github.com/julianstephens/dayprompt/internal/errors"
	"github.com/julianstephens/dayprompt/internal/lifecycle"
	"github.com/julianstephens/dayprompt/internal/logger"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/stats"
	"github.com/julianstephens/dayprompt/internal/utils"
)

// Engine owns the entry collection and the anchor state. Every load, mutate
// and save sequence runs under mu and the store's lock, so neither another
// goroutine nor another process sharing the store interleaves with it.
type Engine struct {
	mu sync.Mutex

	entries  EntryStore
	state    StateStore
	notifier Notifier
	cfg      Config

	now       func() time.Time
	rng       RandSource
	observers []func()
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand replaces the fire time source.
func WithRand(r RandSource) Option {
	return func(e *Engine) { e.rng = r }
}

// WithObserver registers a callback run after the collection changes.
func WithObserver(fn func()) Option {
	return func(e *Engine) { e.observers = append(e.observers, fn) }
}

func New(entries EntryStore, state StateStore, notifier Notifier, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler config: %w", err)
	}
	e := &Engine{
		entries:  entries,
		state:    state,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) clock() (time.Time, string) {
	now := e.now().In(e.cfg.Location)
	return now, utils.DayKey(now, e.cfg.Location)
}

// exclusive runs fn under mu and the store lock. Errors from fn come back
// unchanged; failing to take or release the lock is a StorageError.
func (e *Engine) exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fnErr error
	err := e.entries.WithLock(ctx, func(ctx context.Context) error {
		fnErr = fn(ctx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return &apperrors.StorageError{Op: "lock entries", Err: err}
	}
	return err
}

func (e *Engine) emitChanged() {
	for _, fn := range e.observers {
		fn()
	}
}

// OnBecameActive is the host's resume hook. It runs at most one planning pass
// per calendar day.
func (e *Engine) OnBecameActive(ctx context.Context) (PlanReport, error) {
	return e.PlanForNext(ctx, e.cfg.HorizonDays)
}

// Entries returns the reconciled collection sorted by day. Entries whose
// window closed are persisted as missed before they are returned.
func (e *Engine) Entries(ctx context.Context) ([]models.DayEntry, error) {
	var (
		entries []models.DayEntry
		changed bool
	)
	err := e.exclusive(ctx, func(ctx context.Context) error {
		var err error
		entries, changed, err = e.loadReconciled(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		e.emitChanged()
	}
	return entries, nil
}

// Today returns today's entry, if planned.
func (e *Engine) Today(ctx context.Context) (models.DayEntry, bool, error) {
	entries, err := e.Entries(ctx)
	if err != nil {
		return models.DayEntry{}, false, err
	}
	_, today := e.clock()
	for _, entry := range entries {
		if entry.Day == today {
			return entry, true, nil
		}
	}
	return models.DayEntry{}, false, nil
}

// Summary aggregates the reconciled collection.
func (e *Engine) Summary(ctx context.Context) (stats.Summary, error) {
	entries, err := e.Entries(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	_, today := e.clock()
	return stats.Summarize(entries, today), nil
}

// Submit records a response for day. A response outside the answer window
// fails with a PolicyViolation and leaves the entry unchanged.
func (e *Engine) Submit(ctx context.Context, day string, resp lifecycle.Response) (models.DayEntry, error) {
	var (
		entry   models.DayEntry
		changed bool
		result  error
	)
	err := e.exclusive(ctx, func(ctx context.Context) error {
		entry, changed, result = e.submit(ctx, day, resp)
		// Rejected answers still commit the reconciliation done on the way.
		var storageErr *apperrors.StorageError
		if errors.As(result, &storageErr) {
			return result
		}
		return nil
	})
	if err == nil {
		err = result
	}
	if changed {
		e.emitChanged()
	}
	return entry, err
}

func (e *Engine) submit(ctx context.Context, day string, resp lifecycle.Response) (models.DayEntry, bool, error) {
	now, _ := e.clock()

	entries, changed, err := e.loadReconciled(ctx)
	if err != nil {
		return models.DayEntry{}, false, err
	}

	idx := indexOf(entries, day)
	if idx < 0 {
		return models.DayEntry{}, changed, fmt.Errorf("%w: %s", apperrors.ErrNotFound, day)
	}

	answered, err := lifecycle.Answer(entries[idx], resp, now)
	if err != nil {
		return entries[idx], changed, err
	}
	entries[idx] = answered

	if err := e.entries.SaveEntries(ctx, entries); err != nil {
		return models.DayEntry{}, changed, &apperrors.StorageError{Op: "save entries", Err: err}
	}
	// An early answer makes the pending alert pointless.
	if err := e.notifier.Cancel(ctx, AlertID(day)); err != nil {
		logger.Warn("Failed to cancel alert", "day", day, "error", err)
	}
	logger.Info("Response recorded", "day", day)
	return answered, true, nil
}

// Pending lists the alerts the notifier still holds.
func (e *Engine) Pending(ctx context.Context) ([]models.PendingAlert, error) {
	alerts, err := e.notifier.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending alerts: %w", err)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].FireAt.Before(alerts[j].FireAt) })
	return alerts, nil
}

// loadReconciled loads, reconciles and, when anything expired, saves the
// collection. Callers run inside exclusive.
func (e *Engine) loadReconciled(ctx context.Context) ([]models.DayEntry, bool, error) {
	now, _ := e.clock()

	loaded, err := e.entries.LoadEntries(ctx)
	if err != nil {
		return nil, false, &apperrors.StorageError{Op: "load entries", Err: err}
	}

	entries, changed := lifecycle.ReconcileAll(dedupeByDay(loaded), now)
	if changed > 0 {
		if err := e.entries.SaveEntries(ctx, entries); err != nil {
			return nil, false, &apperrors.StorageError{Op: "save reconciled entries", Err: err}
		}
		logger.Debug("Reconciled expired entries", "count", changed)
	}

	sortByDay(entries)
	return entries, changed > 0, nil
}

func indexOf(entries []models.DayEntry, day string) int {
	for i := range entries {
		if entries[i].Day == day {
			return i
		}
	}
	return -1
}

func sortByDay(entries []models.DayEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Day < entries[j].Day })
}

// dedupeByDay keeps one entry per day, preferring an answered one, then the
// first seen.
func dedupeByDay(entries []models.DayEntry) []models.DayEntry {
	seen := make(map[string]int, len(entries))
	out := make([]models.DayEntry, 0, len(entries))
	for _, entry := range entries {
		i, dup := seen[entry.Day]
		if !dup {
			seen[entry.Day] = len(out)
			out = append(out, entry)
			continue
		}
		logger.Warn("Dropping duplicate entry", "day", entry.Day, "id", entry.ID)
		if entry.Status == models.EntryStatusAnswered && out[i].Status != models.EntryStatusAnswered {
			out[i] = entry
		}
	}
	return out
}
