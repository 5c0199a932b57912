package constants

const (
	SettingStartHour            = "start_hour"
	SettingEndHour              = "end_hour"
	SettingWindowMinutes        = "window_minutes"
	SettingHorizonDays          = "horizon_days"
	SettingTimezone             = "timezone"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingPromptText           = "prompt_text"

	DefaultStartHour            = 10
	DefaultEndHour              = 22
	DefaultWindowMinutes        = 10
	DefaultHorizonDays          = 7
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled = true
	DefaultPromptText           = "How was your day?"
)
