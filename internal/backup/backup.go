// Package backup keeps rotating snapshots of a SQLite store next to it.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/dayprompt/internal/constants"
)

const (
	// DefaultKeep is how many snapshots survive rotation.
	DefaultKeep = 14
	DirName     = "backups"

	filePrefix = constants.AppName + "-"
	fileSuffix = ".db"
	stampFmt   = "20060102-150405"
)

// Info describes one snapshot on disk.
type Info struct {
	Path      string
	Taken     time.Time
	SizeBytes int64
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

// NewManager manages snapshots of dbPath under <dir of dbPath>/backups.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   DefaultKeep,
		now:    time.Now,
	}
}

// WithClock swaps the clock used to name snapshots.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithKeep changes the retention limit. Values below one keep everything.
func (m *Manager) WithKeep(n int) *Manager {
	m.keep = n
	return m
}

func (m *Manager) Dir() string { return m.dir }

// Create snapshots the database and rotates old snapshots away.
func (m *Manager) Create() (string, error) {
	path, err := m.snapshot()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		return path, fmt.Errorf("backup created but rotation failed: %w", err)
	}
	return path, nil
}

func (m *Manager) snapshot() (string, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return "", fmt.Errorf("database not found: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := m.nextName()
	if err != nil {
		return "", err
	}

	db, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := ping(db); err != nil {
		return "", fmt.Errorf("database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return dest, nil
}

// nextName picks an unused file name for the current second. Stamps are UTC.
func (m *Manager) nextName() (string, error) {
	stamp := m.now().UTC().Format(stampFmt)
	name := filepath.Join(m.dir, filePrefix+stamp+fileSuffix)
	for i := 1; ; i++ {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			return name, nil
		}
		if i > 99 {
			return "", fmt.Errorf("failed to pick a unique backup name for %s", stamp)
		}
		name = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, i, fileSuffix))
	}
}

// List returns snapshots newest first. A missing directory is an empty list.
func (m *Manager) List() ([]Info, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, de := range dirEntries {
		taken, ok := parseName(de.Name())
		if de.IsDir() || !ok {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Path: filepath.Join(m.dir, de.Name()), Taken: taken, SizeBytes: fi.Size()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Taken.Equal(out[j].Taken) {
			return out[i].Path > out[j].Path
		}
		return out[i].Taken.After(out[j].Taken)
	})
	return out, nil
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if len(stamp) > len(stampFmt) {
		// Drop the "-N" collision counter.
		stamp = stamp[:len(stampFmt)]
	}
	t, err := time.ParseInLocation(stampFmt, stamp, time.UTC)
	return t, err == nil
}

func (m *Manager) rotate() error {
	if m.keep < 1 {
		return nil
	}
	all, err := m.List()
	if err != nil {
		return err
	}
	for _, old := range all[min(m.keep, len(all)):] {
		if err := os.Remove(old.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", filepath.Base(old.Path), err)
		}
	}
	return nil
}

// Resolve finds a snapshot given an absolute path, a path relative to the
// working directory, or a bare file name inside the backup directory.
func (m *Manager) Resolve(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return filepath.Abs(name)
	}
	if !filepath.IsAbs(name) {
		candidate := filepath.Join(m.dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("backup not found: %s", name)
}

// Restore replaces the database with a snapshot. The current database is
// snapshotted first, outside rotation, so a bad restore can be undone.
// Callers must close their connection to the database beforehand.
func (m *Manager) Restore(path string) (previous string, err error) {
	if err := verify(path); err != nil {
		return "", fmt.Errorf("backup is not a valid database: %w", err)
	}
	if _, err := os.Stat(m.dbPath); err == nil {
		if previous, err = m.snapshot(); err != nil {
			return "", fmt.Errorf("failed to back up current database: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		os.Remove(tmp)
		return previous, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return previous, fmt.Errorf("failed to replace database: %w", err)
	}
	return previous, nil
}

func verify(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return ping(db)
}

func ping(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
