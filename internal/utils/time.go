package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/dayprompt/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// DayKey returns the calendar key (YYYY-MM-DD) of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat)
}

// StartOfDay returns midnight of the given day key in loc.
func StartOfDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// AtClock returns the instant on day at hour:minute in loc.
func AtClock(day string, hour, minute int, loc *time.Location) (time.Time, error) {
	start, err := StartOfDay(day, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(start.Year(), start.Month(), start.Day(), hour, minute, 0, 0, loc), nil
}

// AddDays shifts a day key by n calendar days. Key arithmetic is done in UTC
// so DST transitions never skip or repeat a day.
func AddDays(day string, n int) (string, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// DaysBetween returns the day keys in the half-open range [from, to).
func DaysBetween(from, to string) ([]string, error) {
	start, err := time.Parse(constants.DateFormat, from)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", from, err)
	}
	end, err := time.Parse(constants.DateFormat, to)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", to, err)
	}

	var days []string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(constants.DateFormat))
	}
	return days, nil
}

// ParseMoment parses either an RFC3339 timestamp or an HH:MM clock time.
// Clock times resolve to today in loc.
func ParseMoment(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	clock, err := time.Parse(constants.TimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid moment %q (expected RFC3339 or HH:MM)", s)
	}
	return AtClock(DayKey(now, loc), clock.Hour(), clock.Minute(), loc)
}
