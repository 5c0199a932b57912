package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/dayprompt/internal/models"
)

// LoadState returns the zero state until the first save.
func (s *Store) LoadState(ctx context.Context) (models.SchedulerState, error) {
	var (
		state models.SchedulerState
		last  sql.NullString
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
	if state.LastPlanTimestamp, err = parseTimePtr(last); err != nil {
		return models.SchedulerState{}, fmt.Errorf("failed to parse last_plan_timestamp: %w", err)
	}
	return state, nil
}

func (s *Store) SaveState(ctx context.Context, state models.SchedulerState) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO scheduler_state (id, last_plan_day_key, last_plan_timestamp, first_plan_date)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			last_plan_day_key = excluded.last_plan_day_key,
			last_plan_timestamp = excluded.last_plan_timestamp,
			first_plan_date = excluded.first_plan_date
	`, state.LastPlanDayKey, formatTimePtr(state.LastPlanTimestamp), state.FirstPlanDate)
	if err != nil {
		return fmt.Errorf("failed to save scheduler state: %w", err)
	}
	return nil
}
