// Package tui renders a live view of today's prompt window.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayprompt/internal/models"
)

const (
	tickInterval = time.Second
	maxBarWidth  = 60
)

// LoadFunc returns today's entry, reconciled, and whether one exists.
type LoadFunc func() (models.DayEntry, bool, error)

type (
	tickMsg   time.Time
	loadedMsg struct {
		entry models.DayEntry
		ok    bool
		err   error
	}
)

type Model struct {
	Keys KeyMap
	Help help.Model

	load  LoadFunc
	clock func() time.Time
	loc   *time.Location

	entry    models.DayEntry
	hasEntry bool
	loaded   bool
	err      error
	now      time.Time
	bar      progress.Model
	quitting bool
}

func NewModel(load LoadFunc, clock func() time.Time, loc *time.Location) Model {
	return Model{
		Keys:  DefaultKeyMap(),
		Help:  help.New(),
		load:  load,
		clock: clock,
		loc:   loc,
		now:   clock(),
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		entry, ok, err := m.load()
		return loadedMsg{entry: entry, ok: ok, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Entry reports what the view is showing.
func (m Model) Entry() (models.DayEntry, bool) { return m.entry, m.hasEntry }

func (m Model) Err() error { return m.err }
