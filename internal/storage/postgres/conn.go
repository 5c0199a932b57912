package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"

	"github.com/julianstephens/dayprompt/internal/constants"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// IsConnString reports whether target looks like a PostgreSQL URL or DSN
// rather than a file path.
func IsConnString(target string) bool {
	if isURL(target) {
		return true
	}
	_, ok := dsnParam(target, "host")
	if !ok {
		_, ok = dsnParam(target, "dbname")
	}
	return ok
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// dsnParam looks up key in a space-separated key=value DSN, ignoring case.
func dsnParam(connStr, key string) (string, bool) {
	for _, part := range strings.Fields(connStr) {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func hasParam(connStr, key string) bool {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
		return false
	}
	_, ok := dsnParam(connStr, key)
	return ok
}

// ValidateConnString checks that connStr parses as a PostgreSQL URL or DSN
// and carries no password. Passwords belong in the keyring or the
// environment, never in a flag.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, set := u.User.Password(); set {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	if _, ok := dsnParam(connStr, "password"); ok {
		return ErrEmbeddedCredentials
	}
	return nil
}

// withSearchPath pins the session to the application schema unless the
// caller already chose one.
func withSearchPath(connStr string) string {
	if hasParam(connStr, "search_path") {
		return connStr
	}
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return connStr
		}
		q := u.Query()
		q.Set("search_path", constants.AppName)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

func connectHint(err error, connStr string) error {
	if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(connStr, "sslmode") {
		return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
	}
	return fmt.Errorf("failed to connect to database: %w", err)
}
