package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/models"
)

const jsonStoreVersion = 1

// document is the on-disk layout of a JSONStore.
type document struct {
	Version  int                            `json:"version"`
	Settings models.Settings                `json:"settings"`
	Entries  []models.DayEntry              `json:"entries"`
	State    models.SchedulerState          `json:"state"`
	Alerts   map[string]models.PendingAlert `json:"alerts"`
}

// JSONStore keeps everything in one JSON file. Every operation re-reads the
// file and every write replaces it atomically, so separate processes see each
// other's writes. Writers take an advisory lock on a sibling ".lock" file
// before reading, so read-modify-write cycles never interleave across
// processes.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	return s.write(&document{
		Version:  jsonStoreVersion,
		Settings: models.DefaultSettings(),
		Alerts:   make(map[string]models.PendingAlert),
	})
}

func (s *JSONStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read()
	return err
}

// Migrate has nothing to apply; the document carries its own version.
func (s *JSONStore) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return 0, err
	}
	if logFn != nil {
		logFn(fmt.Sprintf("JSON store is at version %d", doc.Version))
	}
	return 0, nil
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) GetConfigPath() string { return s.path }

func errNotInitialized() error {
	return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
}

type jsonLocked struct{}

// WithLock runs fn holding the file lock. Store calls made with the ctx
// passed to fn do not lock again.
func (s *JSONStore) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(jsonLocked{}) != nil {
		return fn(ctx)
	}
	unlock, err := s.lockFile()
	if err != nil {
		return err
	}
	defer unlock()
	return fn(context.WithValue(ctx, jsonLocked{}, true))
}

// lockFile blocks until the lock is free. The lock is always taken before mu.
func (s *JSONStore) lockFile() (func(), error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, errNotInitialized()
	}
	fl := flock.New(s.path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock storage: %w", err)
	}
	return func() { fl.Unlock() }, nil
}

func (s *JSONStore) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotInitialized()
		}
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > jsonStoreVersion {
		return nil, fmt.Errorf("storage version (%d) is newer than supported version (%d) - please upgrade the application", doc.Version, jsonStoreVersion)
	}
	if doc.Alerts == nil {
		doc.Alerts = make(map[string]models.PendingAlert)
	}
	return doc, nil
}

// write replaces the file through a temp file and rename.
func (s *JSONStore) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) update(ctx context.Context, fn func(*document) error) error {
	if ctx.Value(jsonLocked{}) == nil {
		unlock, err := s.lockFile()
		if err != nil {
			return err
		}
		defer unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *JSONStore) view() (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONStore) GetSettings(ctx context.Context) (models.Settings, error) {
	doc, err := s.view()
	if err != nil {
		return models.Settings{}, err
	}
	return doc.Settings, nil
}

func (s *JSONStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.update(ctx, func(doc *document) error {
		doc.Settings = settings
		return nil
	})
}

func (s *JSONStore) LoadEntries(ctx context.Context) ([]models.DayEntry, error) {
	doc, err := s.view()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func (s *JSONStore) SaveEntries(ctx context.Context, entries []models.DayEntry) error {
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
		if seen[entries[i].Day] {
			return fmt.Errorf("duplicate entry for %s", entries[i].Day)
		}
		seen[entries[i].Day] = true
	}

	sorted := make([]models.DayEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })

	return s.update(ctx, func(doc *document) error {
		doc.Entries = sorted
		return nil
	})
}

func (s *JSONStore) LoadState(ctx context.Context) (models.SchedulerState, error) {
	doc, err := s.view()
	if err != nil {
		return models.SchedulerState{}, err
	}
	return doc.State, nil
}

func (s *JSONStore) SaveState(ctx context.Context, state models.SchedulerState) error {
	return s.update(ctx, func(doc *document) error {
		doc.State = state
		return nil
	})
}

func (s *JSONStore) UpsertAlert(ctx context.Context, alert models.PendingAlert) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	alert.DeliveredAt = nil
	return s.update(ctx, func(doc *document) error {
		doc.Alerts[alert.ID] = alert
		return nil
	})
}

func (s *JSONStore) DeleteAlert(ctx context.Context, id string) error {
	return s.update(ctx, func(doc *document) error {
		delete(doc.Alerts, id)
		return nil
	})
}

func (s *JSONStore) ListAlerts(ctx context.Context, includeDelivered bool) ([]models.PendingAlert, error) {
	doc, err := s.view()
	if err != nil {
		return nil, err
	}
	var alerts []models.PendingAlert
	for _, a := range doc.Alerts {
		if a.DeliveredAt != nil && !includeDelivered {
			continue
		}
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].FireAt.Before(alerts[j].FireAt) })
	return alerts, nil
}

func (s *JSONStore) MarkAlertDelivered(ctx context.Context, id string, at time.Time) error {
	return s.update(ctx, func(doc *document) error {
		alert, ok := doc.Alerts[id]
		if !ok {
			return fmt.Errorf("alert %s not found", id)
		}
		alert.DeliveredAt = &at
		doc.Alerts[id] = alert
		return nil
	})
}
