package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/dayprompt/internal/backup"
	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/logger"
	"github.com/julianstephens/dayprompt/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	defer ctx.Store.Close()

	if ctx.Target.Backend == storage.BackendSQLite {
		if _, err := os.Stat(ctx.Store.GetConfigPath()); err == nil {
			saved, err := backup.NewManager(ctx.Store.GetConfigPath()).WithClock(ctx.Now).Create()
			if err != nil {
				// Migrating without a snapshot is still allowed.
				logger.Warn("Pre-migration backup failed", "error", err)
			} else {
				ctx.Printf("Backed up database to: %s\n", saved)
			}
		}
	}

	count, err := ctx.Store.Migrate(ctx.Ctx(), func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Storage is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
