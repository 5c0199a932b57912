package system

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dayprompt/internal/backup"
	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/storage"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot the database now."`
	List    BackupListCmd    `cmd:"" help:"List snapshots, newest first."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the database with a snapshot."`
}

// confirmRestore asks before the database is replaced.
var confirmRestore = func(path string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title("Replace the current database with this backup?").
		Description(path + "\nStop any running 'serve' process first.").
		Affirmative("Restore").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	if ctx.Target.Backend != storage.BackendSQLite {
		return nil, fmt.Errorf("backups are only supported for SQLite storage (current: %s)", ctx.Target.Backend)
	}
	return backup.NewManager(ctx.Store.GetConfigPath()).WithClock(ctx.Now), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	all, err := mgr.List()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("%d backup(s), keeping the most recent %d:\n\n", len(all), backup.DefaultKeep)
	now := ctx.Now()
	for _, b := range all {
		ctx.Printf("  %s  %-32s %8s  (%s)\n",
			b.Taken.Local().Format("2006-01-02 15:04:05"), filepath.Base(b.Path),
			humanize.Bytes(uint64(b.SizeBytes)), cli.Relative(b.Taken, now))
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Path or file name of the backup to restore."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Resolve(c.File)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := confirmRestore(path)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	ctx.ResetEngine()

	previous, err := mgr.Restore(path)
	if previous != "" {
		ctx.Printf("Saved current database as: %s\n", filepath.Base(previous))
	}
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("restored database failed to open: %w", err)
	}
	ctx.Printf("✓ Restored %s\n", filepath.Base(path))
	return nil
}
