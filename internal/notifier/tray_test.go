package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/dayprompt/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func newTestTraySender(t *testing.T, executable string) (*TraySender, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewTraySender()
	s.userConfigDir = func() (string, error) { return dir, nil }
	s.findProcess = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	lockDir := filepath.Join(dir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		t.Fatal(err)
	}
	return s, lockDir
}

func TestTrayConfigDirOverride(t *testing.T) {
	s, lockDir := newTestTraySender(t, constants.TrayExecutablePrefix)

	dir, err := s.configDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != lockDir {
		t.Errorf("configDir() = %s, want %s", dir, lockDir)
	}

	settings := `{"settings": {"lockfile_dir": "/custom/lock/dir"}}`
	if err := os.WriteFile(filepath.Join(lockDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	if dir, _ := s.configDir(); dir != "/custom/lock/dir" {
		t.Errorf("configDir() = %s, want override", dir)
	}
}

func TestTrayDiscover(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    string
	}{
		{"two parts", "8080|12345", "dayprompt-tray", "malformed"},
		{"garbage", "invalid", "dayprompt-tray", "malformed"},
		{"empty secret", "8080|12345|", "dayprompt-tray", "secret"},
		{"empty port", "|12345|s3cret", "dayprompt-tray", "port"},
		{"port out of range", "99999|12345|s3cret", "dayprompt-tray", "range"},
		{"bad pid", "8080|abc|s3cret", "dayprompt-tray", "process ID"},
		{"not running", "8080|12345|s3cret", "", "not running"},
		{"wrong executable", "8080|12345|s3cret", "other-app", "is not"},
		{"ok", "8080|12345|s3cret\n", "dayprompt-tray", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, lockDir := newTestTraySender(t, tt.executable)
			lockfile := filepath.Join(lockDir, constants.NotifierLockfileName)
			if err := os.WriteFile(lockfile, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			port, secret, err := s.discover(lockfile)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("discover() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("discover() error = %v", err)
			}
			if port != 8080 || secret != "s3cret" {
				t.Errorf("discover() = %d, %q", port, secret)
			}
		})
	}
}

func TestTrayMissingLockfile(t *testing.T) {
	s, _ := newTestTraySender(t, constants.TrayExecutablePrefix)
	if err := s.Send(context.Background(), "hi"); err == nil || !strings.Contains(err.Error(), "not running") {
		t.Errorf("Send() error = %v", err)
	}
	if err := s.Check(); err == nil {
		t.Error("Check() should fail without a lockfile")
	}
}

func TestTrayCheck(t *testing.T) {
	s, lockDir := newTestTraySender(t, constants.TrayExecutablePrefix)
	if err := os.WriteFile(filepath.Join(lockDir, constants.NotifierLockfileName), []byte("8080|4242|s3cret"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := s.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestTraySend(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("X-Dayprompt-Secret") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	s, lockDir := newTestTraySender(t, constants.TrayExecutablePrefix)
	lock := fmt.Sprintf("%s|4242|s3cret", u.Port())
	if err := os.WriteFile(filepath.Join(lockDir, constants.NotifierLockfileName), []byte(lock), 0600); err != nil {
		t.Fatal(err)
	}

	if err := s.Send(context.Background(), "How was your day?"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.Text != "How was your day?" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}

	wrong := fmt.Sprintf("%s|4242|nope", u.Port())
	if err := os.WriteFile(filepath.Join(lockDir, constants.NotifierLockfileName), []byte(wrong), 0600); err != nil {
		t.Fatal(err)
	}
	if err := s.Send(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Send() with wrong secret error = %v", err)
	}
}
