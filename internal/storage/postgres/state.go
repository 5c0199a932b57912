package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/dayprompt/internal/models"
)

func (s *Store) LoadState(ctx context.Context) (models.SchedulerState, error) {
	var (
		state models.SchedulerState
		last  sql.NullTime
	)
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT last_plan_day_key, last_plan_timestamp, first_plan_date
		FROM scheduler_state WHERE id = 1
	`).Scan(&state.LastPlanDayKey, &last, &state.FirstPlanDate)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SchedulerState{}, nil
	}
	if err != nil {
		return models.SchedulerState{}, fmt.Errorf("failed to load scheduler state: %w", err)
	}
	if last.Valid {
		state.LastPlanTimestamp = &last.Time
	}
	return state, nil
}

func (s *Store) SaveState(ctx context.Context, state models.SchedulerState) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO scheduler_state (id, last_plan_day_key, last_plan_timestamp, first_plan_date)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			last_plan_day_key = EXCLUDED.last_plan_day_key,
			last_plan_timestamp = EXCLUDED.last_plan_timestamp,
			first_plan_date = EXCLUDED.first_plan_date
	`, state.LastPlanDayKey, state.LastPlanTimestamp, state.FirstPlanDate)
	if err != nil {
		return fmt.Errorf("failed to save scheduler state: %w", err)
	}
	return nil
}
