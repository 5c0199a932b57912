package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/dayprompt/internal/models"
)

const entryColumns = `id, day, scheduled_at, expires_at, status, text, mood, score,
	allow_early_answer, answered_at, created_at, updated_at`

func (s *Store) LoadEntries(ctx context.Context) ([]models.DayEntry, error) {
	rows, err := s.q(ctx).QueryContext(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY day ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.DayEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// SaveEntries replaces the stored collection in one transaction.
func (s *Store) SaveEntries(ctx context.Context, entries []models.DayEntry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx queryer) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO entries ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			var mood *string
			if e.Mood != nil {
				m := string(*e.Mood)
				mood = &m
			}
			_, err := stmt.ExecContext(ctx,
				e.ID, e.Day, formatTime(e.ScheduledAt), formatTime(e.ExpiresAt), string(e.Status),
				e.Text, mood, e.Score, e.AllowEarlyAnswer, formatTimePtr(e.AnsweredAt),
				formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to insert entry %s: %w", e.Day, err)
			}
		}
		return nil
	})
}

func scanEntry(rows *sql.Rows) (models.DayEntry, error) {
	var (
		e                                        models.DayEntry
		status                                   string
		text, mood, answeredAt                   sql.NullString
		score                                    sql.NullInt64
		scheduledAt, expiresAt, created, updated string
	)
	err := rows.Scan(&e.ID, &e.Day, &scheduledAt, &expiresAt, &status, &text, &mood, &score,
		&e.AllowEarlyAnswer, &answeredAt, &created, &updated)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.Status = models.EntryStatus(status)
	if text.Valid {
		e.Text = &text.String
	}
	if mood.Valid {
		m := models.Mood(mood.String)
		e.Mood = &m
	}
	if score.Valid {
		v := int(score.Int64)
		e.Score = &v
	}

	if e.ScheduledAt, err = parseTime(scheduledAt); err != nil {
		return e, fmt.Errorf("failed to parse scheduled_at for %s: %w", e.Day, err)
	}
	if e.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return e, fmt.Errorf("failed to parse expires_at for %s: %w", e.Day, err)
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return e, fmt.Errorf("failed to parse created_at for %s: %w", e.Day, err)
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return e, fmt.Errorf("failed to parse updated_at for %s: %w", e.Day, err)
	}
	if e.AnsweredAt, err = parseTimePtr(answeredAt); err != nil {
		return e, fmt.Errorf("failed to parse answered_at for %s: %w", e.Day, err)
	}
	return e, nil
}
