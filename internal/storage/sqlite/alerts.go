package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
)

func (s *Store) UpsertAlert(ctx context.Context, alert models.PendingAlert) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO alerts (id, fire_at, message, delivered_at)
		VALUES (?, ?, ?, NULL)
		ON CONFLICT (id) DO UPDATE SET
			fire_at = excluded.fire_at,
			message = excluded.message,
			delivered_at = NULL
	`, alert.ID, formatTime(alert.FireAt.UTC()), alert.Message)
	if err != nil {
		return fmt.Errorf("failed to upsert alert: %w", err)
	}
	return nil
}

// DeleteAlert is a no-op for unknown ids.
func (s *Store) DeleteAlert(ctx context.Context, id string) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

// ListAlerts returns alerts ordered by fire time.
func (s *Store) ListAlerts(ctx context.Context, includeDelivered bool) ([]models.PendingAlert, error) {
	query := `SELECT id, fire_at, message, delivered_at FROM alerts`
	if !includeDelivered {
		query += ` WHERE delivered_at IS NULL`
	}
	query += ` ORDER BY fire_at ASC`

	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.PendingAlert
	for rows.Next() {
		var (
			alert     models.PendingAlert
			fireAt    string
			delivered sql.NullString
		)
		if err := rows.Scan(&alert.ID, &fireAt, &alert.Message, &delivered); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if alert.FireAt, err = parseTime(fireAt); err != nil {
			return nil, fmt.Errorf("failed to parse fire_at: %w", err)
		}
		if alert.DeliveredAt, err = parseTimePtr(delivered); err != nil {
			return nil, fmt.Errorf("failed to parse delivered_at: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}

func (s *Store) MarkAlertDelivered(ctx context.Context, id string, at time.Time) error {
	result, err := s.q(ctx).ExecContext(ctx, `UPDATE alerts SET delivered_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to mark alert delivered: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert %s not found", id)
	}
	return nil
}
