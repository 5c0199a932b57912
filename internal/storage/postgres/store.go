package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/lib/pq"

	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/logger"
	"github.com/julianstephens/dayprompt/internal/migration"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(connStr)}
}

func (s *Store) open(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return connectHint(err, s.connStr)
	}
	s.db = db
	return nil
}

func (s *Store) Init(ctx context.Context) error {
	if err := s.open(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.Migrate(ctx, func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&count); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if count == 0 {
		if err := s.SaveSettings(ctx, models.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := s.open(ctx); err != nil {
		return err
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.Validate(ctx)
}

func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	if err := s.open(ctx); err != nil {
		return 0, err
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.Apply(ctx, logFn)
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres), nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// GetConfigPath returns a fixed label so the connection string never
// reaches logs or output.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}
