// Package stats derives streaks and aggregates from a snapshot of entries.
package stats

import (
	"sort"

	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

func statusByDay(entries []models.DayEntry) map[string]models.EntryStatus {
	days := make(map[string]models.EntryStatus, len(entries))
	for _, e := range entries {
		if days[e.Day] != models.EntryStatusAnswered {
			days[e.Day] = e.Status
		}
	}
	return days
}

// CurrentStreak counts consecutive answered days ending at today. A today
// that is still open (pending or not yet planned) does not break the run, so
// the count starts from yesterday; a missed today yields 0.
func CurrentStreak(entries []models.DayEntry, today string) int {
	status := statusByDay(entries)

	day := today
	if s := status[today]; s != models.EntryStatusAnswered {
		if s == models.EntryStatusMissed {
			return 0
		}
		prev, err := utils.AddDays(today, -1)
		if err != nil {
			return 0
		}
		day = prev
	}

	streak := 0
	for status[day] == models.EntryStatusAnswered {
		streak++
		prev, err := utils.AddDays(day, -1)
		if err != nil {
			break
		}
		day = prev
	}
	return streak
}

// LongestStreak returns the longest run of consecutive answered days.
func LongestStreak(entries []models.DayEntry) int {
	var days []string
	for d, s := range statusByDay(entries) {
		if s == models.EntryStatusAnswered {
			days = append(days, d)
		}
	}
	sort.Strings(days)

	longest, run := 0, 0
	for i, d := range days {
		if i > 0 {
			if next, err := utils.AddDays(days[i-1], 1); err == nil && next == d {
				run++
			} else {
				run = 1
			}
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
