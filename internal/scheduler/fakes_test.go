package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
)

var errInjected = errors.New("injected failure")

// memStore is an in-memory EntryStore and StateStore with failure injection.
// Engines sharing one memStore behave like processes sharing a database.
type memStore struct {
	lock sync.Mutex // held by WithLock

	mu       sync.Mutex
	onLoad   func() // runs once, after the next load
	entries  []models.DayEntry
	state    models.SchedulerState
	saves    int
	failLoad bool
	failSave bool
}

func copyEntries(in []models.DayEntry) []models.DayEntry {
	if in == nil {
		return nil
	}
	out := make([]models.DayEntry, len(in))
	copy(out, in)
	return out
}

func (m *memStore) LoadEntries(ctx context.Context) ([]models.DayEntry, error) {
	m.mu.Lock()
	if m.failLoad {
		m.mu.Unlock()
		return nil, errInjected
	}
	out := copyEntries(m.entries)
	hook := m.onLoad
	m.onLoad = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *memStore) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return fn(ctx)
}

func (m *memStore) SaveEntries(ctx context.Context, entries []models.DayEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errInjected
	}
	m.entries = copyEntries(entries)
	m.saves++
	return nil
}

func (m *memStore) LoadState(ctx context.Context) (models.SchedulerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memStore) SaveState(ctx context.Context, state models.SchedulerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

func (m *memStore) snapshot() []models.DayEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyEntries(m.entries)
}

func (m *memStore) byDay(day string) (models.DayEntry, bool) {
	for _, e := range m.snapshot() {
		if e.Day == day {
			return e, true
		}
	}
	return models.DayEntry{}, false
}

// fakeNotifier keeps at most one alert per id and can fail chosen ids.
type fakeNotifier struct {
	mu        sync.Mutex
	alerts    map[string]time.Time
	calls     int
	failFor   map[string]bool
	cancelled []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{alerts: make(map[string]time.Time), failFor: make(map[string]bool)}
}

func (n *fakeNotifier) Schedule(ctx context.Context, id string, fireAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.failFor[id] {
		return errInjected
	}
	n.alerts[id] = fireAt
	return nil
}

func (n *fakeNotifier) Cancel(ctx context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.alerts, id)
	n.cancelled = append(n.cancelled, id)
	return nil
}

func (n *fakeNotifier) ListPending(ctx context.Context) ([]models.PendingAlert, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.PendingAlert, 0, len(n.alerts))
	for id, at := range n.alerts {
		out = append(out, models.PendingAlert{ID: id, FireAt: at, Message: "prompt"})
	}
	return out, nil
}

func (n *fakeNotifier) scheduleCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// fixedRand always draws the same offset.
type fixedRand int

func (r fixedRand) IntN(n int) int { return int(r) % n }

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
