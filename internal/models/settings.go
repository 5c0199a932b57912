package models

// Settings represents application-wide settings
type Settings struct {
	StartHour            int    `json:"start_hour"`            // earliest hour a daily prompt may fire
	EndHour              int    `json:"end_hour"`              // prompts fire strictly before this hour
	WindowMinutes        int    `json:"window_minutes"`        // width of the answer window
	HorizonDays          int    `json:"horizon_days"`          // how many days ahead to plan
	Timezone             string `json:"timezone"`              // IANA timezone name, or "Local" for system timezone
	NotificationsEnabled bool   `json:"notifications_enabled"` // whether alerts are delivered
	PromptText           string `json:"prompt_text"`           // text shown when an alert fires
}
