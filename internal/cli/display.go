package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/models"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true)

	answeredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	missedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	MutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// StatusLabel renders a status with its colour.
func StatusLabel(status models.EntryStatus) string {
	switch status {
	case models.EntryStatusAnswered:
		return answeredStyle.Render(string(status))
	case models.EntryStatusPending:
		return pendingStyle.Render(string(status))
	case models.EntryStatusMissed:
		return missedStyle.Render(string(status))
	default:
		return MutedStyle.Render(string(status))
	}
}

// Relative formats then relative to now, e.g. "6 minutes from now".
func Relative(then, now time.Time) string {
	return humanize.RelTime(then, now, "ago", "from now")
}

// DescribeWindow explains where now falls relative to an entry's window.
func DescribeWindow(entry models.DayEntry, now time.Time) string {
	switch {
	case entry.Status.IsTerminal():
		return fmt.Sprintf("closed %s", Relative(entry.ExpiresAt, now))
	case now.Before(entry.ScheduledAt):
		if entry.AllowEarlyAnswer {
			return fmt.Sprintf("opens %s, answers accepted now", Relative(entry.ScheduledAt, now))
		}
		return fmt.Sprintf("opens %s", Relative(entry.ScheduledAt, now))
	case now.Before(entry.ExpiresAt):
		return fmt.Sprintf("open, closes %s", Relative(entry.ExpiresAt, now))
	default:
		return fmt.Sprintf("closed %s", Relative(entry.ExpiresAt, now))
	}
}

// FormatWindow renders the window as HH:MM-HH:MM in loc.
func FormatWindow(entry models.DayEntry, loc *time.Location) string {
	return entry.ScheduledAt.In(loc).Format(constants.TimeFormat) + "-" + entry.ExpiresAt.In(loc).Format(constants.TimeFormat)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}
