package models

import (
	"fmt"
	"time"
)

// PendingAlert is a one-shot, calendar-time alert. At most one exists per ID.
type PendingAlert struct {
	ID          string     `json:"id"`
	FireAt      time.Time  `json:"fire_at"`
	Message     string     `json:"message"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

func (a *PendingAlert) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("alert id cannot be empty")
	}
	if a.FireAt.IsZero() {
		return fmt.Errorf("alert %s: fire time cannot be empty", a.ID)
	}
	if a.Message == "" {
		return fmt.Errorf("alert message cannot be empty")
	}
	return nil
}

// IsDue reports whether an undelivered alert should fire at now.
func (a *PendingAlert) IsDue(now time.Time) bool {
	return a.DeliveredAt == nil && !a.FireAt.After(now)
}
