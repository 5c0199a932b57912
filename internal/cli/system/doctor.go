package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/dayprompt/internal/backup"
	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/notifier"
	"github.com/julianstephens/dayprompt/internal/scheduler"
	"github.com/julianstephens/dayprompt/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(context.Context, *cli.Context) error
	// warn marks checks whose failure does not fail the command.
	warn bool
	// needsDB checks are skipped when storage cannot be loaded.
	needsDB bool
}

// trayCheck is replaced in tests.
var trayCheck = func() error { return notifier.NewTraySender().Check() }

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	rctx := ctx.Ctx()
	hasError := false
	dbReachable := false

	if err := ctx.Store.Load(rctx); err != nil {
		ctx.Printf("❌ Storage reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Storage reachable: OK\n")
		dbReachable = true
	}

	checks := []check{
		{name: "Settings", run: checkSettings, needsDB: true},
		{name: "Entry integrity", run: checkEntries, needsDB: true},
		{name: "Scheduler state", run: checkState, needsDB: true},
		{name: "Alert queue", run: checkAlerts, needsDB: true, warn: true},
		{name: "Clock/timezone", run: checkClock},
		{name: "Tray app", run: func(context.Context, *cli.Context) error { return trayCheck() }, warn: true},
	}
	if ctx.Target.Backend == storage.BackendSQLite {
		checks = append(checks, check{name: "Backups", run: checkBackups, warn: true})
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(rctx, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkBackups(_ context.Context, ctx *cli.Context) error {
	all, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return fmt.Errorf("no backups found, create one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkSettings(rctx context.Context, ctx *cli.Context) error {
	settings, err := ctx.Settings(rctx)
	if err != nil {
		return err
	}
	_, err = scheduler.ConfigFromSettings(settings)
	return err
}

func checkEntries(rctx context.Context, ctx *cli.Context) error {
	entries, err := ctx.Store.LoadEntries(rctx)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	var problems []string
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		e := entries[i]
		if err := e.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
		if seen[e.Day] {
			problems = append(problems, fmt.Sprintf("duplicate entry for %s", e.Day))
		}
		seen[e.Day] = true
		if e.Status == models.EntryStatusLate {
			problems = append(problems, fmt.Sprintf("entry %s has reserved status %q", e.Day, e.Status))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s):\n   - %s", len(problems), strings.Join(problems, "\n   - "))
	}
	return nil
}

func checkState(rctx context.Context, ctx *cli.Context) error {
	state, err := ctx.Store.LoadState(rctx)
	if err != nil {
		return fmt.Errorf("failed to load scheduler state: %w", err)
	}
	for _, day := range []string{state.FirstPlanDate, state.LastPlanDayKey} {
		if day == "" {
			continue
		}
		if _, err := time.Parse(constants.DateFormat, day); err != nil {
			return fmt.Errorf("invalid day key %q: %w", day, err)
		}
	}
	if state.FirstPlanDate != "" && state.LastPlanDayKey != "" && state.LastPlanDayKey < state.FirstPlanDate {
		return fmt.Errorf("last plan day %s is before first plan day %s", state.LastPlanDayKey, state.FirstPlanDate)
	}
	return nil
}

func checkAlerts(rctx context.Context, ctx *cli.Context) error {
	alerts, err := ctx.Store.ListAlerts(rctx, false)
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}
	entries, err := ctx.Store.LoadEntries(rctx)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	planned := make(map[string]bool, len(entries))
	for _, e := range entries {
		planned[scheduler.AlertID(e.Day)] = true
	}

	var orphans []string
	for _, a := range alerts {
		if !planned[a.ID] {
			orphans = append(orphans, a.ID)
		}
	}
	if len(orphans) > 0 {
		return fmt.Errorf("alerts without an entry: %s", strings.Join(orphans, ", "))
	}
	return nil
}

func checkClock(rctx context.Context, ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if name, _ := now.In(time.Local).Zone(); name == "" {
		return fmt.Errorf("local timezone has no name")
	}
	return nil
}
