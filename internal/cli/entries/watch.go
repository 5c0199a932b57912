package entries

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/tui"
)

// WatchCmd shows today's window with a live countdown.
type WatchCmd struct{}

// runProgram is replaced in tests.
var runProgram = func(ctx *cli.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx.Ctx()), tea.WithOutput(ctx.Writer())).Run()
	return err
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}

	load := func() (models.DayEntry, bool, error) { return engine.Today(rctx) }
	return runProgram(ctx, tui.NewModel(load, ctx.Now, engine.Config().Location))
}
