package postgres

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
		var (
			e          models.DayEntry
			status     string
			text, mood sql.NullString
			score      sql.NullInt64
			answeredAt sql.NullTime
		)
		err := rows.Scan(&e.ID, &e.Day, &e.ScheduledAt, &e.ExpiresAt, &status, &text, &mood, &score,
			&e.AllowEarlyAnswer, &answeredAt, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
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
		if answeredAt.Valid {
			e.AnsweredAt = &answeredAt.Time
		}
		entries = append(entries, e)
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

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO entries ("+entryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`)
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
				e.ID, e.Day, e.ScheduledAt, e.ExpiresAt, string(e.Status),
				e.Text, mood, e.Score, e.AllowEarlyAnswer, e.AnsweredAt,
				e.CreatedAt, e.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert entry %s: %w", e.Day, err)
			}
		}
		return nil
	})
}
