// Package lifecycle holds the day entry state machine and the answer window
// policy. Everything here is pure; persistence is the caller's job.
package lifecycle

import (
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
)

// IsAnswerable reports whether a response may be accepted for entry at now.
// The window is closed on both ends.
func IsAnswerable(entry models.DayEntry, now time.Time) bool {
	if entry.AllowEarlyAnswer {
		return true
	}
	return !now.Before(entry.ScheduledAt) && !now.After(entry.ExpiresAt)
}
