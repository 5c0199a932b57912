package plans

import (
	"fmt"
	"strings"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/scheduler"
)

type PlanCmd struct {
	Horizon *int `help:"Days to plan ahead, today included. Defaults to the horizon_days setting."`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	if c.Horizon != nil && *c.Horizon < 1 {
		return fmt.Errorf("--horizon must be at least 1, got %d", *c.Horizon)
	}

	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}
	horizon := engine.Config().HorizonDays
	if c.Horizon != nil {
		horizon = *c.Horizon
	}

	report, err := engine.PlanForNext(rctx, horizon)
	if err != nil {
		return err
	}
	printReport(ctx, report)
	return nil
}

func printReport(ctx *cli.Context, r scheduler.PlanReport) {
	if r.Throttled {
		ctx.Printf("Already planned today (%s).\n", r.Day)
		ctx.Println("Use test-prompt or plan-at to re-plan a single day.")
		return
	}
	if r.LoadFailed {
		ctx.Println("⚠ Stored entries could not be read. Alerts were armed but nothing was saved.")
	}
	if r.Backfilled > 0 {
		ctx.Printf("Closed out %d past day(s).\n", r.Backfilled)
	}
	if r.SkippedToday {
		ctx.Println("Today's drawn time has already passed, so today was skipped.")
	}
	if len(r.Planned) == 0 {
		ctx.Println("Nothing to plan.")
	} else {
		ctx.Printf("Planned %d day(s): %s\n", len(r.Planned), strings.Join(r.Planned, ", "))
	}
	if r.AlertFailures > 0 {
		ctx.Printf("⚠ %d alert(s) could not be armed, see the log for details.\n", r.AlertFailures)
	}
}
