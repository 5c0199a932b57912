package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayprompt/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Refresh):
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.Help.Width = msg.Width
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)

	case loadedMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.entry, m.hasEntry = msg.entry, msg.ok
		}

	case tickMsg:
		prevNow := m.now
		m.now = m.clock()
		// Reload once the window closes so the status flips to missed.
		if m.hasEntry && m.entry.Status == models.EntryStatusPending &&
			!prevNow.After(m.entry.ExpiresAt) && m.now.After(m.entry.ExpiresAt) {
			return m, tea.Batch(m.fetch(), tick())
		}
		return m, tick()
	}
	return m, nil
}

// elapsed is the share of the answer window that has passed, in [0, 1].
func elapsed(e models.DayEntry, now time.Time) float64 {
	if e.Status.IsTerminal() || !now.Before(e.ExpiresAt) {
		return 1
	}
	if now.Before(e.ScheduledAt) {
		return 0
	}
	total := e.ExpiresAt.Sub(e.ScheduledAt)
	if total <= 0 {
		return 1
	}
	return float64(now.Sub(e.ScheduledAt)) / float64(total)
}
