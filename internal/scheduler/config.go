package scheduler

import (
	"fmt"
	"time"

	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

// Config holds the planning constants.
type Config struct {
	StartHour      int
	EndHour        int
	WindowDuration time.Duration
	HorizonDays    int
	Location       *time.Location
}

// ConfigFromSettings builds a Config from validated settings.
func ConfigFromSettings(s models.Settings) (Config, error) {
	if err := s.Validate(); err != nil {
		return Config{}, err
	}
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		return Config{}, err
	}
	return Config{
		StartHour:      s.StartHour,
		EndHour:        s.EndHour,
		WindowDuration: s.Window(),
		HorizonDays:    s.HorizonDays,
		Location:       loc,
	}, nil
}

func (c Config) validate() error {
	if c.StartHour < 0 || c.EndHour > 24 || c.EndHour <= c.StartHour {
		return fmt.Errorf("invalid daily window %02d:00-%02d:00", c.StartHour, c.EndHour)
	}
	if c.WindowDuration <= 0 {
		return fmt.Errorf("answer window must be positive, got %v", c.WindowDuration)
	}
	if c.HorizonDays < 1 {
		return fmt.Errorf("horizon must be at least 1 day, got %d", c.HorizonDays)
	}
	if c.Location == nil {
		return fmt.Errorf("location cannot be nil")
	}
	return nil
}

// AlertID returns the deterministic alert id for a day.
func AlertID(day string) string {
	return constants.AlertIDPrefix + day
}
