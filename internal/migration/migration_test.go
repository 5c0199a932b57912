package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sqlFile(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		dialect Dialect
		n       int
		want    string
	}{
		{SQLite, 1, "?"},
		{SQLite, 3, "?"},
		{Postgres, 1, "$1"},
		{Postgres, 12, "$12"},
	}
	for _, tt := range tests {
		if got := tt.dialect.Placeholder(tt.n); got != tt.want {
			t.Errorf("%s.Placeholder(%d) = %q, want %q", tt.dialect, tt.n, got, tt.want)
		}
	}
}

func TestApplyFreshDatabase(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	fsys := fstest.MapFS{
		"002_second.sql": sqlFile("ALTER TABLE test ADD COLUMN name TEXT;"),
		"001_init.sql":   sqlFile("CREATE TABLE test (id INTEGER PRIMARY KEY);"),
		"README.md":      sqlFile("ignored"),
	}
	runner := NewRunner(db, fsys, SQLite)

	version, err := runner.CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("fresh version = %d, want 0", version)
	}

	var logs []string
	applied, err := runner.Apply(ctx, func(msg string) { logs = append(logs, msg) })
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	if _, err := db.Exec("INSERT INTO test (id, name) VALUES (1, 'x')"); err != nil {
		t.Errorf("migrated table unusable: %v", err)
	}

	version, _ = runner.CurrentVersion(ctx)
	if version != 2 {
		t.Errorf("version after apply = %d, want 2", version)
	}
	if err := runner.Validate(ctx); err != nil {
		t.Errorf("Validate after apply: %v", err)
	}

	var names int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&names); err != nil {
		t.Fatal(err)
	}
	if names != 2 {
		t.Errorf("recorded %d migrations, want 2", names)
	}
}

func TestApplyIsIncremental(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	fsys := fstest.MapFS{"001_init.sql": sqlFile("CREATE TABLE a (id INTEGER);")}

	if _, err := NewRunner(db, fsys, SQLite).Apply(ctx, nil); err != nil {
		t.Fatal(err)
	}

	fsys["002_more.sql"] = sqlFile("CREATE TABLE b (id INTEGER);")
	runner := NewRunner(db, fsys, SQLite)
	if err := runner.Validate(ctx); err == nil || !strings.Contains(err.Error(), "migrate") {
		t.Errorf("Validate with pending migration = %v, want hint to migrate", err)
	}

	applied, err := runner.Apply(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}

	applied, err = runner.Apply(ctx, nil)
	if err != nil || applied != 0 {
		t.Errorf("second Apply = %d, %v; want 0, nil", applied, err)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	fsys := fstest.MapFS{
		"001_init.sql":   sqlFile("CREATE TABLE ok (id INTEGER);"),
		"002_broken.sql": sqlFile("CREATE TABLE broken (id INTEGER); THIS IS NOT SQL;"),
	}
	runner := NewRunner(db, fsys, SQLite)

	applied, err := runner.Apply(ctx, nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if version, _ := runner.CurrentVersion(ctx); version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

func TestNewerDatabaseRejected(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	fsys := fstest.MapFS{
		"001_init.sql": sqlFile("CREATE TABLE a (id INTEGER);"),
		"002_b.sql":    sqlFile("CREATE TABLE b (id INTEGER);"),
	}
	if _, err := NewRunner(db, fsys, SQLite).Apply(ctx, nil); err != nil {
		t.Fatal(err)
	}

	older := NewRunner(db, fstest.MapFS{"001_init.sql": fsys["001_init.sql"]}, SQLite)
	if err := older.Validate(ctx); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("Validate = %v, want newer-schema error", err)
	}
	if _, err := older.Apply(ctx, nil); err == nil {
		t.Error("Apply on newer database should fail")
	}
}

func TestMigrationsRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no underscore", fstest.MapFS{"001.sql": sqlFile("")}},
		{"not a number", fstest.MapFS{"abc_init.sql": sqlFile("")}},
		{"zero version", fstest.MapFS{"000_init.sql": sqlFile("")}},
		{"duplicate", fstest.MapFS{"001_a.sql": sqlFile(""), "01_b.sql": sqlFile("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRunner(nil, tt.fsys, SQLite).Migrations(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyNoFiles(t *testing.T) {
	db := setupTestDB(t)
	applied, err := NewRunner(db, fstest.MapFS{}, SQLite).Apply(context.Background(), nil)
	if err != nil || applied != 0 {
		t.Errorf("Apply = %d, %v; want 0, nil", applied, err)
	}
}
