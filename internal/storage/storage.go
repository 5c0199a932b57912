// Package storage selects and opens the durable backend: SQLite by default,
// PostgreSQL for connection strings, or a single JSON file.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/keyring"
	"github.com/julianstephens/dayprompt/internal/storage/postgres"
	"github.com/julianstephens/dayprompt/internal/storage/sqlite"
)

// Backend names the kind of store a target resolves to.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendJSON     Backend = "json"
)

// Target is a resolved storage location.
type Target struct {
	Backend Backend
	// Location is a file path, or a connection string for postgres.
	Location string
}

// Resolve maps a config value to a backend. "keyring" reads the connection
// string from the OS keyring. Connection strings given directly must not
// embed a password unless trusted is set, which the caller does for values
// sourced from the environment.
func Resolve(config string, trusted bool) (Target, error) {
	config = strings.TrimSpace(config)
	if config == "" {
		config = constants.DefaultConfigPath
	}

	if config == constants.KeyringTarget {
		connStr, err := keyring.Default().Get()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return Target{}, fmt.Errorf("no connection string in keyring, run '%s keyring set' first", constants.AppName)
			}
			return Target{}, err
		}
		return Target{Backend: BackendPostgres, Location: connStr}, nil
	}

	if postgres.IsConnString(config) {
		if !trusted {
			if err := postgres.ValidateConnString(config); err != nil {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return Target{}, fmt.Errorf("%w: store it with '%s keyring set' or set %s", err, constants.AppName, constants.EnvDBConnection)
				}
				return Target{}, err
			}
		}
		return Target{Backend: BackendPostgres, Location: config}, nil
	}

	path, err := ExpandHome(config)
	if err != nil {
		return Target{}, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return Target{Backend: BackendJSON, Location: path}, nil
	}
	return Target{Backend: BackendSQLite, Location: path}, nil
}

// New builds an unopened provider for t. Call Init or Load before use.
func New(t Target) Provider {
	switch t.Backend {
	case BackendPostgres:
		return postgres.New(t.Location)
	case BackendJSON:
		return NewJSONStore(t.Location)
	default:
		return sqlite.NewStore(t.Location)
	}
}

// Open resolves config and builds its provider.
func Open(config string, trusted bool) (Provider, Target, error) {
	t, err := Resolve(config, trusted)
	if err != nil {
		return nil, Target{}, err
	}
	return New(t), t, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
	_ Provider = (*JSONStore)(nil)
)
