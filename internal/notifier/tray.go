package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/dayprompt/internal/constants"
)

// TraySender posts notifications to the companion tray app. The tray app
// advertises itself with a lockfile holding "port|pid|secret".
type TraySender struct {
	userConfigDir func() (string, error)
	findProcess   func(int) (ps.Process, error)
	client        *http.Client
}

func NewTraySender() *TraySender {
	return &TraySender{
		userConfigDir: os.UserConfigDir,
		findProcess:   ps.FindProcess,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func (s *TraySender) Send(ctx context.Context, text string) error {
	port, secret, err := s.locate()
	if err != nil {
		return err
	}
	return s.post(ctx, port, secret, webhookPayload{Text: text, DurationMs: constants.NotificationDurationMs})
}

// Check reports whether a live tray app is advertising itself.
func (s *TraySender) Check() error {
	_, _, err := s.locate()
	return err
}

func (s *TraySender) locate() (int, string, error) {
	dir, err := s.configDir()
	if err != nil {
		return 0, "", err
	}
	return s.discover(filepath.Join(dir, constants.NotifierLockfileName))
}

// configDir honours a lockfile_dir override in the tray app's settings.json.
func (s *TraySender) configDir() (string, error) {
	base, err := s.userConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(base, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var doc struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if json.Unmarshal(data, &doc) == nil && doc.Settings.LockfileDir != "" {
		return doc.Settings.LockfileDir, nil
	}
	return dir, nil
}

func (s *TraySender) discover(lockfile string) (port int, secret string, err error) {
	content, err := os.ReadFile(lockfile)
	if err != nil {
		return 0, "", fmt.Errorf("%s is not running", constants.TrayExecutablePrefix)
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return 0, "", errors.New("lockfile is malformed")
	}

	port, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return 0, "", fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, "", errors.New("invalid process ID in lockfile")
	}

	secret = strings.TrimSpace(parts[2])
	if secret == "" {
		return 0, "", errors.New("secret in lockfile is empty")
	}

	proc, err := s.findProcess(pid)
	if err != nil || proc == nil {
		return 0, "", fmt.Errorf("%s process not running", constants.TrayExecutablePrefix)
	}
	if !strings.HasPrefix(proc.Executable(), constants.TrayExecutablePrefix) {
		return 0, "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutablePrefix, proc.Executable())
	}
	return port, secret, nil
}

func (s *TraySender) post(ctx context.Context, port int, secret string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Dayprompt-Secret", secret)

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
