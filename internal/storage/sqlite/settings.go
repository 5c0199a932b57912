package sqlite

import (
	"context"
	"fmt"

	"github.com/julianstephens/dayprompt/internal/models"
)

func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, fmt.Errorf("failed to scan setting: %w", err)
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, fmt.Errorf("error iterating settings: %w", err)
	}
	return models.MapToSettings(data)
}

func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}
