package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/notifier"
	"github.com/julianstephens/dayprompt/internal/scheduler"
	"github.com/julianstephens/dayprompt/internal/storage"
)

// Context is shared by every command. The engine is built lazily from the
// stored settings so commands that never plan do not need valid settings.
type Context struct {
	Store  storage.Provider
	Target storage.Target

	// Base is the parent context for storage and engine calls. Nil means
	// context.Background.
	Base context.Context
	// Out receives command output. Nil means stdout.
	Out io.Writer
	// Clock overrides time.Now for the engine and the display.
	Clock func() time.Time
	// EngineOptions are appended when the engine is built.
	EngineOptions []scheduler.Option

	engine *scheduler.Engine
}

func (c *Context) Ctx() context.Context {
	if c.Base != nil {
		return c.Base
	}
	return context.Background()
}

func (c *Context) Writer() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Writer(), args...)
}

func (c *Context) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c *Context) Settings(ctx context.Context) (models.Settings, error) {
	settings, err := c.Store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// Engine returns the planning engine, building it on first use.
func (c *Context) Engine(ctx context.Context) (*scheduler.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}

	settings, err := c.Settings(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := scheduler.ConfigFromSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	opts := []scheduler.Option{scheduler.WithClock(c.Now)}
	opts = append(opts, c.EngineOptions...)

	n := notifier.NewQueueNotifier(c.Store, settings.PromptText)
	engine, err := scheduler.New(c.Store, c.Store, n, cfg, opts...)
	if err != nil {
		return nil, err
	}
	c.engine = engine
	return engine, nil
}

// ResetEngine drops the cached engine so the next call picks up new settings.
func (c *Context) ResetEngine() {
	c.engine = nil
}

// Activate runs the daily planning trigger.
func (c *Context) Activate(ctx context.Context) (scheduler.PlanReport, error) {
	engine, err := c.Engine(ctx)
	if err != nil {
		return scheduler.PlanReport{}, err
	}
	return engine.OnBecameActive(ctx)
}
