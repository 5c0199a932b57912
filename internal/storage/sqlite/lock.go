package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/dayprompt/internal/logger"
)

// queryer is what *sql.DB, *sql.Tx and *sql.Conn have in common.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type lockedConn struct{}

// q returns the connection holding the write lock when ctx carries one.
// With a single pooled connection, going through s.db there would block.
func (s *Store) q(ctx context.Context) queryer {
	if conn, ok := ctx.Value(lockedConn{}).(*sql.Conn); ok {
		return conn
	}
	return s.db
}

// WithLock runs fn inside a BEGIN IMMEDIATE transaction, which holds the
// database write lock for every process sharing the file. Store calls made
// with the ctx passed to fn run in that transaction. An error from fn rolls
// everything back.
func (s *Store) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, held := ctx.Value(lockedConn{}).(*sql.Conn); held {
		return fn(ctx)
	}
	if s.db == nil {
		return errors.New("storage not loaded")
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK"); err != nil {
			logger.Warn("Failed to roll back locked transaction", "error", err)
		}
	}()

	if err := fn(context.WithValue(ctx, lockedConn{}, conn)); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	return nil
}

// inTx runs fn in its own transaction, or in the locked one when ctx
// carries it.
func (s *Store) inTx(ctx context.Context, fn func(q queryer) error) error {
	if conn, ok := ctx.Value(lockedConn{}).(*sql.Conn); ok {
		return fn(conn)
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
