package system

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/notifier"
	"github.com/julianstephens/dayprompt/internal/storage"
	"github.com/julianstephens/dayprompt/internal/storage/sqlite"
)

var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(context.Background(), settings); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:  store,
		Target: storage.Target{Backend: storage.BackendSQLite, Location: dbPath},
		Out:    out,
		Clock:  func() time.Time { return testNow },
	}
	return ctx, out
}

// recordingSender counts deliveries and can fail every send.
type recordingSender struct {
	mu    sync.Mutex
	texts []string
	fail  error
}

func (s *recordingSender) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.texts)
}

func useSender(t *testing.T, s notifier.Sender) {
	t.Helper()
	prev := newSender
	newSender = func() notifier.Sender { return s }
	t.Cleanup(func() { newSender = prev })
}
