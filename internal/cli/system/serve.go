package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/logger"
	"github.com/julianstephens/dayprompt/internal/notifier"
)

// ServeCmd keeps the planner and the dispatcher running. Settings are read
// once at startup; restart after changing them.
type ServeCmd struct {
	Once bool `help:"Run one planning pass and one dispatch, then exit."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()

	settings, err := ctx.Settings(rctx)
	if err != nil {
		return err
	}
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}

	sender := newSender()
	dispatcher := notifier.NewDispatcher(ctx.Store, sender, constants.NotifyGracePeriod)

	plan := func() {
		if _, err := engine.OnBecameActive(rctx); err != nil {
			logger.Error("Planning pass failed", "error", err)
		}
	}
	dispatch := func() {
		if !settings.NotificationsEnabled {
			return
		}
		report, err := dispatcher.DispatchDue(rctx, ctx.Now())
		if err != nil {
			logger.Error("Dispatch failed", "error", err)
			return
		}
		if report.Sent+report.Stale+report.Failed > 0 {
			logger.Info("Dispatched alerts", "sent", report.Sent, "stale", report.Stale, "failed", report.Failed)
		}
	}

	plan()
	dispatch()
	if c.Once {
		return nil
	}

	scheduler := cron.New(
		cron.WithLocation(engine.Config().Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := scheduler.AddFunc(constants.DispatchSchedule, dispatch); err != nil {
		return fmt.Errorf("invalid dispatch schedule: %w", err)
	}
	if _, err := scheduler.AddFunc(constants.ActivationSchedule, plan); err != nil {
		return fmt.Errorf("invalid planning schedule: %w", err)
	}

	scheduler.Start()
	logger.Info("Serving", "dispatch", constants.DispatchSchedule, "planning", constants.ActivationSchedule)
	ctx.Printf("Serving %s. Press Ctrl+C to stop.\n", constants.AppName)

	<-rctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	ctx.Println("Stopped.")
	return ignoreCancel(rctx.Err())
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
