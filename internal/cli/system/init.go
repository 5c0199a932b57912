package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/dayprompt/internal/backup"
	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing storage before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()

	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(rctx); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(rctx, ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Target.Backend == storage.BackendPostgres {
		return fmt.Errorf("--force is not supported for PostgreSQL, drop the %q schema manually", constants.AppName)
	}

	path := ctx.Store.GetConfigPath()
	if c.Source != "" && samePath(path, c.Source) {
		return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
	}

	if _, err := os.Stat(path); err == nil {
		if ctx.Target.Backend == storage.BackendSQLite {
			saved, err := backup.NewManager(path).WithClock(ctx.Now).Create()
			if err != nil {
				return fmt.Errorf("failed to back up existing storage: %w", err)
			}
			ctx.Printf("Backed up existing storage to: %s\n", saved)
		}
		// Close first so the file is not held open while it is removed.
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing storage: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing storage: %w", err)
		}
		ctx.Printf("Deleted existing storage at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing storage: %w", err)
	}
	return nil
}

func samePath(a, b string) bool {
	b, err := storage.ExpandHome(b)
	if err != nil {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// copyFrom moves settings, entries, scheduler state and queued alerts from
// the source store into the freshly initialized one.
func (c *InitCmd) copyFrom(rctx context.Context, ctx *cli.Context) error {
	source, _, err := storage.Open(c.Source, false)
	if err != nil {
		return err
	}
	if err := source.Load(rctx); err != nil {
		return fmt.Errorf("failed to load source storage: %w", err)
	}
	defer source.Close()

	dest := ctx.Store

	ctx.Println("  Copying settings...")
	settings, err := source.GetSettings(rctx)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dest.SaveSettings(rctx, settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.Println("  Copying entries...")
	entries, err := source.LoadEntries(rctx)
	if err != nil {
		return fmt.Errorf("failed to get entries from source: %w", err)
	}
	if err := dest.SaveEntries(rctx, entries); err != nil {
		return fmt.Errorf("failed to save entries to destination: %w", err)
	}
	ctx.Printf("    Copied %d entries\n", len(entries))

	ctx.Println("  Copying scheduler state...")
	state, err := source.LoadState(rctx)
	if err != nil {
		return fmt.Errorf("failed to get scheduler state from source: %w", err)
	}
	if err := dest.SaveState(rctx, state); err != nil {
		return fmt.Errorf("failed to save scheduler state to destination: %w", err)
	}

	ctx.Println("  Copying alerts...")
	alerts, err := source.ListAlerts(rctx, true)
	if err != nil {
		return fmt.Errorf("failed to get alerts from source: %w", err)
	}
	for _, alert := range alerts {
		if err := dest.UpsertAlert(rctx, alert); err != nil {
			return fmt.Errorf("failed to add alert %s: %w", alert.ID, err)
		}
		if alert.DeliveredAt != nil {
			if err := dest.MarkAlertDelivered(rctx, alert.ID, *alert.DeliveredAt); err != nil {
				return fmt.Errorf("failed to mark alert %s delivered: %w", alert.ID, err)
			}
		}
	}
	ctx.Printf("    Copied %d alerts\n", len(alerts))
	return nil
}
