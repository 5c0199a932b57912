package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dayprompt/internal/constants"
	apperrors "github.com/julianstephens/dayprompt/internal/errors"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

var entryNamespace = uuid.MustParse(constants.EntryNamespace)

// Response is the payload a user submits for a day.
type Response struct {
	Text  string
	Mood  *models.Mood
	Score *int
}

func (r Response) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("response text cannot be empty")
	}
	if r.Mood != nil {
		if _, err := models.ParseMood(string(*r.Mood)); err != nil {
			return err
		}
	}
	if r.Score != nil && (*r.Score < constants.MinScore || *r.Score > constants.MaxScore) {
		return fmt.Errorf("score must be between %d and %d, got %d", constants.MinScore, constants.MaxScore, *r.Score)
	}
	return nil
}

// NewPending creates a pending entry whose window opens at scheduledAt.
func NewPending(day string, scheduledAt time.Time, window time.Duration, allowEarly bool, now time.Time) models.DayEntry {
	return models.DayEntry{
		ID:               uuid.New().String(),
		Day:              day,
		ScheduledAt:      scheduledAt,
		ExpiresAt:        scheduledAt.Add(window),
		Status:           models.EntryStatusPending,
		AllowEarlyAnswer: allowEarly,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// NewMissed synthesizes a missed entry for a day nobody planned. The id and
// window depend only on the day, so two syntheses of the same day agree.
func NewMissed(day string, window time.Duration, loc *time.Location, now time.Time) (models.DayEntry, error) {
	open, err := utils.AtClock(day, constants.SyntheticWindowHour, 0, loc)
	if err != nil {
		return models.DayEntry{}, err
	}
	return models.DayEntry{
		ID:          uuid.NewSHA1(entryNamespace, []byte(day)).String(),
		Day:         day,
		ScheduledAt: open,
		ExpiresAt:   open.Add(window),
		Status:      models.EntryStatusMissed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Reconcile marks a pending entry missed once its window has closed.
// It reports whether the entry changed.
func Reconcile(entry models.DayEntry, now time.Time) (models.DayEntry, bool) {
	if entry.Status != models.EntryStatusPending || !now.After(entry.ExpiresAt) {
		return entry, false
	}
	entry.Status = models.EntryStatusMissed
	entry.UpdatedAt = now
	return entry, true
}

// ReconcileAll applies Reconcile to every entry and returns how many changed.
func ReconcileAll(entries []models.DayEntry, now time.Time) ([]models.DayEntry, int) {
	out := make([]models.DayEntry, len(entries))
	changed := 0
	for i, e := range entries {
		var ok bool
		out[i], ok = Reconcile(e, now)
		if ok {
			changed++
		}
	}
	return out, changed
}

// Answer moves a pending entry to answered. The entry is returned unchanged
// alongside any error.
func Answer(entry models.DayEntry, resp Response, now time.Time) (models.DayEntry, error) {
	if entry.Status != models.EntryStatusPending {
		return entry, fmt.Errorf("%w: %s is %s", apperrors.ErrNotPending, entry.Day, entry.Status)
	}
	if !IsAnswerable(entry, now) {
		return entry, &apperrors.PolicyViolation{
			Day:         entry.Day,
			At:          now,
			ScheduledAt: entry.ScheduledAt,
			ExpiresAt:   entry.ExpiresAt,
		}
	}
	if err := resp.Validate(); err != nil {
		return entry, err
	}

	text := strings.TrimSpace(resp.Text)
	answeredAt := now
	entry.Text = &text
	entry.Mood = resp.Mood
	entry.Score = resp.Score
	entry.AnsweredAt = &answeredAt
	entry.Status = models.EntryStatusAnswered
	entry.UpdatedAt = now
	return entry, nil
}

// Replan resets entry to pending with a fresh window. The id survives.
func Replan(entry models.DayEntry, scheduledAt time.Time, window time.Duration, allowEarly bool, now time.Time) models.DayEntry {
	entry.ScheduledAt = scheduledAt
	entry.ExpiresAt = scheduledAt.Add(window)
	entry.Status = models.EntryStatusPending
	entry.AllowEarlyAnswer = allowEarly
	entry.ClearResponse()
	entry.UpdatedAt = now
	return entry
}
