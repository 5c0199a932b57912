// Package keyring keeps the database connection string in the OS keyring so
// it never has to appear in a flag, a config file or shell history.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/dayprompt/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are stored.
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials addresses one secret in the OS keyring.
type Credentials struct {
	Service string
	User    string
}

// Default returns the slot holding the database connection string.
func Default() Credentials {
	return Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

func (c Credentials) Get() (string, error) {
	secret, err := gokeyring.Get(c.Service, c.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (c Credentials) Set(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := gokeyring.Set(c.Service, c.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (c Credentials) Delete() error {
	err := gokeyring.Delete(c.Service, c.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available probes the keyring with a read. A miss still means it works.
func (c Credentials) Available() bool {
	_, err := gokeyring.Get(c.Service, c.User+"-probe")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}

// Redact hides everything after the scheme and host of a connection string.
func Redact(connStr string) string {
	if i := strings.Index(connStr, "@"); i >= 0 {
		if j := strings.Index(connStr, "://"); j >= 0 && j < i {
			return connStr[:j+3] + "***" + connStr[i:]
		}
	}
	if strings.Contains(strings.ToLower(connStr), "password=") {
		fields := strings.Fields(connStr)
		for i, f := range fields {
			if strings.HasPrefix(strings.ToLower(f), "password=") {
				fields[i] = "password=***"
			}
		}
		return strings.Join(fields, " ")
	}
	return connStr
}
