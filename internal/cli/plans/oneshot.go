package plans

import (
	"fmt"
	"time"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

// TestPromptCmd replaces today's entry with one that fires shortly and
// accepts answers right away.
type TestPromptCmd struct {
	Lead time.Duration `help:"Delay before the prompt fires." default:"1m"`
}

func (c *TestPromptCmd) Run(ctx *cli.Context) error {
	if c.Lead < 0 {
		return fmt.Errorf("--lead cannot be negative")
	}
	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}

	entry, err := engine.PlanOneShotSoon(rctx, c.Lead)
	if err != nil {
		return err
	}
	printPlanned(ctx, entry, engine.Config().Location)
	return nil
}

// PlanAtCmd anchors a day's window at an exact moment.
type PlanAtCmd struct {
	Moment string `arg:"" help:"RFC3339 timestamp, or HH:MM for today."`
}

func (c *PlanAtCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}
	loc := engine.Config().Location

	moment, err := utils.ParseMoment(c.Moment, ctx.Now(), loc)
	if err != nil {
		return err
	}

	entry, err := engine.PlanAt(rctx, moment)
	if err != nil {
		return err
	}
	printPlanned(ctx, entry, loc)
	return nil
}

func printPlanned(ctx *cli.Context, entry models.DayEntry, loc *time.Location) {
	ctx.Printf("✓ Planned %s: %s (%s)\n", entry.Day, cli.FormatWindow(entry, loc), cli.DescribeWindow(entry, ctx.Now()))
}
