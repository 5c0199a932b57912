package settings

import (
	"fmt"

	"github.com/julianstephens/dayprompt/internal/cli"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	StartHour            *int    `help:"Earliest hour a daily prompt may fire (0-23)."`
	EndHour              *int    `help:"Prompts fire strictly before this hour (1-24)."`
	WindowMinutes        *int    `help:"Minutes a prompt stays answerable."`
	HorizonDays          *int    `help:"Days to plan ahead, today included."`
	Timezone             *string `help:"IANA timezone name, or Local."`
	NotificationsEnabled *bool   `help:"Enable or disable notifications."`
	PromptText           *string `help:"Text shown when a prompt fires."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()
	settings, err := ctx.Settings(rctx)
	if err != nil {
		return err
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Daily Window:          %02d:00-%02d:00\n", settings.StartHour, settings.EndHour)
		ctx.Printf("  Answer Window:         %d min\n", settings.WindowMinutes)
		ctx.Printf("  Horizon:               %d day(s)\n", settings.HorizonDays)
		ctx.Printf("  Timezone:              %s\n", settings.Timezone)
		ctx.Printf("  Prompt Text:           %s\n", settings.PromptText)
		ctx.Println("\nNotification Settings:")
		ctx.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		return nil
	}

	updated := false
	if c.StartHour != nil {
		settings.StartHour = *c.StartHour
		updated = true
	}
	if c.EndHour != nil {
		settings.EndHour = *c.EndHour
		updated = true
	}
	if c.WindowMinutes != nil {
		settings.WindowMinutes = *c.WindowMinutes
		updated = true
	}
	if c.HorizonDays != nil {
		settings.HorizonDays = *c.HorizonDays
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.PromptText != nil {
		settings.PromptText = *c.PromptText
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := ctx.Store.SaveSettings(rctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.ResetEngine()
	ctx.Println("Settings updated successfully.")
	ctx.Println("Changes to the daily window apply from the next planning pass.")
	return nil
}
