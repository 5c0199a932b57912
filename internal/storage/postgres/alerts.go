package postgres

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
		VALUES ($1, $2, $3, NULL)
		ON CONFLICT (id) DO UPDATE SET
			fire_at = EXCLUDED.fire_at,
			message = EXCLUDED.message,
			delivered_at = NULL
	`, alert.ID, alert.FireAt, alert.Message)
	if err != nil {
		return fmt.Errorf("failed to upsert alert: %w", err)
	}
	return nil
}

func (s *Store) DeleteAlert(ctx context.Context, id string) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

func (s *Store) ListAlerts(ctx context.Context, includeDelivered bool) ([]models.PendingAlert, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, fire_at, message, delivered_at
		FROM alerts
		WHERE $1::boolean OR delivered_at IS NULL
		ORDER BY fire_at ASC
	`, includeDelivered)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.PendingAlert
	for rows.Next() {
		var (
			alert     models.PendingAlert
			delivered sql.NullTime
		)
		if err := rows.Scan(&alert.ID, &alert.FireAt, &alert.Message, &delivered); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if delivered.Valid {
			alert.DeliveredAt = &delivered.Time
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}

func (s *Store) MarkAlertDelivered(ctx context.Context, id string, at time.Time) error {
	result, err := s.q(ctx).ExecContext(ctx, `UPDATE alerts SET delivered_at = $1 WHERE id = $2`, at, id)
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
