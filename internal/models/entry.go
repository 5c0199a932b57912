package models

import (
	"fmt"
	"time"
)

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusAnswered EntryStatus = "answered"
	EntryStatusMissed   EntryStatus = "missed"
	// EntryStatusLate is reserved. No transition produces it.
	EntryStatusLate EntryStatus = "late"
)

// IsTerminal reports whether the engine must leave an entry in this status alone.
func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusAnswered || s == EntryStatusMissed
}

func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusPending, EntryStatusAnswered, EntryStatusMissed, EntryStatusLate:
		return true
	}
	return false
}

type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodLow   Mood = "low"
	MoodAwful Mood = "awful"
)

// Moods lists every mood, best first.
var Moods = []Mood{MoodGreat, MoodGood, MoodOkay, MoodLow, MoodAwful}

func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mood %q (expected one of great, good, okay, low, awful)", s)
}

// DayEntry is the record of one calendar day's prompt and response.
type DayEntry struct {
	ID               string      `json:"id"`
	Day              string      `json:"day"` // YYYY-MM-DD format
	ScheduledAt      time.Time   `json:"scheduled_at"`
	ExpiresAt        time.Time   `json:"expires_at"`
	Status           EntryStatus `json:"status"`
	Text             *string     `json:"text,omitempty"`
	Mood             *Mood       `json:"mood,omitempty"`
	Score            *int        `json:"score,omitempty"`
	AllowEarlyAnswer bool        `json:"allow_early_answer"`
	AnsweredAt       *time.Time  `json:"answered_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (e *DayEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id cannot be empty")
	}
	if _, err := time.Parse("2006-01-02", e.Day); err != nil {
		return fmt.Errorf("invalid entry day (expected YYYY-MM-DD): %w", err)
	}
	if !e.ExpiresAt.After(e.ScheduledAt) {
		return fmt.Errorf("entry %s: expires_at must be after scheduled_at", e.Day)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("entry %s: invalid status %q", e.Day, e.Status)
	}
	return nil
}

// Window returns the width of the answer window.
func (e *DayEntry) Window() time.Duration {
	return e.ExpiresAt.Sub(e.ScheduledAt)
}

// ClearResponse drops every response field.
func (e *DayEntry) ClearResponse() {
	e.Text = nil
	e.Mood = nil
	e.Score = nil
	e.AnsweredAt = nil
}
