package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// advisoryLockID identifies the entry-collection lock among advisory locks
// other applications may take on the same database.
const advisoryLockID int64 = 0x646179707270

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type lockedTx struct{}

func (s *Store) q(ctx context.Context) queryer {
	if tx, ok := ctx.Value(lockedTx{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithLock runs fn in a transaction holding a transaction-scoped advisory
// lock, so every client of the database takes turns. Store calls made with
// the ctx passed to fn run in that transaction.
func (s *Store) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, held := ctx.Value(lockedTx{}).(*sql.Tx); held {
		return fn(ctx)
	}
	if s.db == nil {
		return errors.New("storage not loaded")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockID); err != nil {
		return fmt.Errorf("failed to acquire advisory lock: %w", err)
	}
	if err := fn(context.WithValue(ctx, lockedTx{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(q queryer) error) error {
	if tx, ok := ctx.Value(lockedTx{}).(*sql.Tx); ok {
		return fn(tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
