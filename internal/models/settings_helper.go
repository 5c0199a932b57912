package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/dayprompt/internal/constants"
)

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		StartHour:            constants.DefaultStartHour,
		EndHour:              constants.DefaultEndHour,
		WindowMinutes:        constants.DefaultWindowMinutes,
		HorizonDays:          constants.DefaultHorizonDays,
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		PromptText:           constants.DefaultPromptText,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys missing from the map keep their default value.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		var err error
		switch key {
		case constants.SettingStartHour:
			settings.StartHour, err = strconv.Atoi(value)
		case constants.SettingEndHour:
			settings.EndHour, err = strconv.Atoi(value)
		case constants.SettingWindowMinutes:
			settings.WindowMinutes, err = strconv.Atoi(value)
		case constants.SettingHorizonDays:
			settings.HorizonDays, err = strconv.Atoi(value)
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingPromptText:
			settings.PromptText = value
		}
		if err != nil {
			return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingStartHour:            strconv.Itoa(settings.StartHour),
		constants.SettingEndHour:              strconv.Itoa(settings.EndHour),
		constants.SettingWindowMinutes:        strconv.Itoa(settings.WindowMinutes),
		constants.SettingHorizonDays:          strconv.Itoa(settings.HorizonDays),
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingPromptText:           settings.PromptText,
	}
}

func (s Settings) Validate() error {
	if s.StartHour < 0 || s.StartHour > 23 {
		return fmt.Errorf("start hour must be between 0 and 23, got %d", s.StartHour)
	}
	if s.EndHour <= s.StartHour || s.EndHour > 24 {
		return fmt.Errorf("end hour must be after start hour and at most 24, got %d", s.EndHour)
	}
	if s.WindowMinutes < 1 {
		return fmt.Errorf("window must be at least 1 minute, got %d", s.WindowMinutes)
	}
	if s.HorizonDays < 1 {
		return fmt.Errorf("horizon must be at least 1 day, got %d", s.HorizonDays)
	}
	if s.Timezone != "" && s.Timezone != "Local" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}
	if strings.TrimSpace(s.PromptText) == "" {
		return fmt.Errorf("prompt text cannot be empty")
	}
	return nil
}

// Window returns the configured answer window as a duration.
func (s Settings) Window() time.Duration {
	return time.Duration(s.WindowMinutes) * time.Minute
}
