package models

import "time"

// SchedulerState is the anchor state of the planning engine. It lives outside
// the entry collection and only the engine writes it.
type SchedulerState struct {
	LastPlanDayKey    string     `json:"last_plan_day_key"`
	LastPlanTimestamp *time.Time `json:"last_plan_timestamp,omitempty"`
	FirstPlanDate     string     `json:"first_plan_date"`
}

// PlannedOn reports whether a full planning pass already completed for day.
func (s SchedulerState) PlannedOn(day string) bool {
	return s.LastPlanDayKey != "" && s.LastPlanDayKey == day
}
