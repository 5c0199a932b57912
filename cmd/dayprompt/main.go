package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/cli/entries"
	"github.com/julianstephens/dayprompt/internal/cli/plans"
	"github.com/julianstephens/dayprompt/internal/cli/settings"
	"github.com/julianstephens/dayprompt/internal/cli/system"
	"github.com/julianstephens/dayprompt/internal/constants"
	apperrors "github.com/julianstephens/dayprompt/internal/errors"
	"github.com/julianstephens/dayprompt/internal/logger"
	"github.com/julianstephens/dayprompt/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage path (.db for SQLite, .json for a JSON file), a PostgreSQL connection string without a password, or 'keyring'. Defaults to ${default_config}." env:"DAYPROMPT_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"DAYPROMPT_DEBUG"`

	Init    system.InitCmd    `cmd:"" help:"Initialize dayprompt storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Backup  system.BackupCmd  `cmd:"" help:"Manage SQLite backups."`

	Today   entries.TodayCmd   `cmd:"" help:"Show today's prompt." default:"1"`
	Watch   entries.WatchCmd   `cmd:"" help:"Watch today's window with a live countdown."`
	Answer  entries.AnswerCmd  `cmd:"" help:"Answer a day's prompt."`
	History entries.HistoryCmd `cmd:"" help:"Show recent entries."`
	Stats   entries.StatsCmd   `cmd:"" help:"Show streaks and totals."`

	Plan       plans.PlanCmd       `cmd:"" help:"Run the daily planning pass."`
	TestPrompt plans.TestPromptCmd `cmd:"" help:"Plan a prompt for today that fires shortly."`
	PlanAt     plans.PlanAtCmd     `cmd:"" help:"Plan a day's prompt at an exact time."`
	Alerts     plans.AlertsCmd     `cmd:"" help:"List pending alerts."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Serve    system.ServeCmd      `cmd:"" help:"Run the planner and notifier in the foreground."`
	Notify   system.NotifyCmd     `cmd:"" hidden:"" help:"Deliver due notifications (used by cron or the tray app)."`
}

// Commands that manage storage themselves skip the shared Load.
var selfLoading = map[string]bool{"init": true, "migrate": true, "doctor": true}

// Commands that run the planning pass themselves, or must work without it.
var noActivation = map[string]bool{
	"init": true, "migrate": true, "doctor": true, "keyring": true,
	"backup": true, "plan": true, "serve": true,
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A once-a-day prompt that asks how your day went."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)
	command := strings.Fields(kctx.Command())[0]

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{Base: runCtx}

	if command != "keyring" {
		config, trusted := CLI.Config, false
		if config == "" {
			// Secrets from the environment may carry a password.
			if env := os.Getenv(constants.EnvDBConnection); env != "" {
				config, trusted = env, true
			}
		}

		store, target, err := storage.Open(config, trusted)
		if err != nil {
			apperrors.Fatal(err)
		}
		defer store.Close()
		appCtx.Store = store
		appCtx.Target = target

		if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir(target), Stderr: command == "serve"}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
		logger.Debug("Resolved storage", "backend", target.Backend, "path", store.GetConfigPath())

		if !selfLoading[command] {
			if err := store.Load(runCtx); err != nil {
				apperrors.Fatal(err)
			}
		}
		if !noActivation[command] {
			if _, err := appCtx.Activate(runCtx); err != nil {
				logger.Warn("Planning pass failed", "error", err)
				fmt.Fprintf(os.Stderr, "Warning: planning failed: %v\n", err)
			}
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		apperrors.Fatal(err)
	}
}

// logDir keeps logs next to file storage, or in the user config dir for
// PostgreSQL.
func logDir(t storage.Target) string {
	if t.Backend != storage.BackendPostgres {
		return filepath.Dir(t.Location)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, constants.AppName)
	}
	return os.TempDir()
}
