package scheduler

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/dayprompt/internal/errors"
	"github.com/julianstephens/dayprompt/internal/lifecycle"
	"github.com/julianstephens/dayprompt/internal/logger"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

// PlanReport describes what a planning pass did.
type PlanReport struct {
	Day           string
	Throttled     bool
	Backfilled    int
	Planned       []string
	SkippedToday  bool
	AlertFailures int
	// LoadFailed marks a pass that planned from an empty collection because
	// the stored one could not be read. Nothing was saved.
	LoadFailed bool
}

// PlanForNext runs the daily planning pass: backfill history, then give each
// of the next horizonDays days a pending entry with a random window and an
// armed alert. A second call on the same calendar day is a no-op.
func (e *Engine) PlanForNext(ctx context.Context, horizonDays int) (PlanReport, error) {
	var report PlanReport
	err := e.exclusive(ctx, func(ctx context.Context) error {
		var err error
		report, err = e.planForNext(ctx, horizonDays)
		return err
	})
	if err == nil && !report.Throttled && !report.LoadFailed {
		e.emitChanged()
	}
	return report, err
}

func (e *Engine) planForNext(ctx context.Context, horizonDays int) (PlanReport, error) {
	now, today := e.clock()
	report := PlanReport{Day: today}

	state, err := e.state.LoadState(ctx)
	if err != nil {
		return report, &apperrors.StorageError{Op: "load scheduler state", Err: err}
	}
	if state.PlannedOn(today) {
		report.Throttled = true
		logger.Debug("Planning already ran today", "day", today)
		return report, nil
	}

	entries, err := e.entries.LoadEntries(ctx)
	if err != nil {
		// Still arm alerts, but never replace a collection that
		// could not be read.
		logger.Warn("Failed to load entries, planning from an empty collection", "error", err)
		report.LoadFailed = true
		entries = nil
	}
	entries = dedupeByDay(entries)

	if state.FirstPlanDate == "" {
		state.FirstPlanDate = today
		if err := e.state.SaveState(ctx, state); err != nil {
			return report, &apperrors.StorageError{Op: "save first plan date", Err: err}
		}
		logger.Info("First planning pass", "day", today)
	}

	if !report.LoadFailed {
		entries, report.Backfilled, err = e.backfill(entries, state.FirstPlanDate, today, now)
		if err != nil {
			return report, err
		}
	}
	// Today's window may have closed since the last pass.
	entries, _ = lifecycle.ReconcileAll(entries, now)

	var fires []time.Time
	for i := 0; i < horizonDays; i++ {
		day, err := utils.AddDays(today, i)
		if err != nil {
			return report, err
		}
		fire, err := e.drawFireTime(day)
		if err != nil {
			return report, err
		}
		if i == 0 && fire.Before(now) {
			report.SkippedToday = true
			logger.Debug("Skipping today, drawn time already passed", "day", day, "fire", fire)
			continue
		}

		var ok bool
		entries, ok = e.upsertPending(entries, day, fire, today, now)
		if !ok {
			continue
		}
		report.Planned = append(report.Planned, day)
		fires = append(fires, fire)
	}

	if report.LoadFailed {
		report.AlertFailures = e.arm(ctx, report.Planned, fires)
		logger.Warn("Planning pass ran without stored entries", "day", today, "planned", len(report.Planned))
		return report, nil
	}

	if err := e.entries.SaveEntries(ctx, entries); err != nil {
		return report, &apperrors.StorageError{Op: "save entries", Err: err}
	}
	// Alerts are armed only for entries that were persisted.
	report.AlertFailures = e.arm(ctx, report.Planned, fires)

	state.LastPlanDayKey = today
	state.LastPlanTimestamp = &now
	if err := e.state.SaveState(ctx, state); err != nil {
		return report, &apperrors.StorageError{Op: "save scheduler state", Err: err}
	}

	logger.Info("Planning pass complete",
		"day", today,
		"backfilled", report.Backfilled,
		"planned", len(report.Planned),
		"skipped_today", report.SkippedToday,
		"alert_failures", report.AlertFailures,
	)
	return report, nil
}

// arm schedules one alert per planned day in order and returns how many
// failed. Failures are logged and do not stop the loop.
func (e *Engine) arm(ctx context.Context, days []string, fires []time.Time) int {
	failures := 0
	for i, day := range days {
		if err := e.notifier.Schedule(ctx, AlertID(day), fires[i]); err != nil {
			failures++
			logger.Warn("Failed to arm alert", "day", day, "error", err)
		}
	}
	return failures
}

// upsertPending gives day a fresh pending window. Days before today, days
// that are already answered or missed, and windows open right now are left
// alone.
func (e *Engine) upsertPending(entries []models.DayEntry, day string, fire time.Time, today string, now time.Time) ([]models.DayEntry, bool) {
	if day < today {
		return entries, false
	}
	idx := indexOf(entries, day)
	if idx < 0 {
		return append(entries, lifecycle.NewPending(day, fire, e.cfg.WindowDuration, false, now)), true
	}
	if entries[idx].Status.IsTerminal() {
		logger.Debug("Keeping closed entry", "day", day, "status", entries[idx].Status)
		return entries, false
	}
	if windowOpen(entries[idx], now) {
		logger.Debug("Keeping open window", "day", day, "expires", entries[idx].ExpiresAt)
		return entries, false
	}
	entries[idx] = lifecycle.Replan(entries[idx], fire, e.cfg.WindowDuration, false, now)
	return entries, true
}

func windowOpen(entry models.DayEntry, now time.Time) bool {
	return !now.Before(entry.ScheduledAt) && !now.After(entry.ExpiresAt)
}

// drawFireTime picks a uniform minute in [StartHour, EndHour) on day.
func (e *Engine) drawFireTime(day string) (time.Time, error) {
	span := (e.cfg.EndHour - e.cfg.StartHour) * 60
	offset := e.rng.IntN(span)
	minutes := e.cfg.StartHour*60 + offset
	return utils.AtClock(day, minutes/60, minutes%60, e.cfg.Location)
}

// backfill closes out every day in [from, today). Pending entries whose
// window passed become missed and days without an entry get a synthetic
// missed one. Running it twice yields the same collection.
func (e *Engine) backfill(entries []models.DayEntry, from, today string, now time.Time) ([]models.DayEntry, int, error) {
	days, err := utils.DaysBetween(from, today)
	if err != nil {
		return entries, 0, fmt.Errorf("backfill range: %w", err)
	}

	changed := 0
	for _, day := range days {
		idx := indexOf(entries, day)
		if idx < 0 {
			missed, err := lifecycle.NewMissed(day, e.cfg.WindowDuration, e.cfg.Location, now)
			if err != nil {
				return entries, changed, err
			}
			entries = append(entries, missed)
			changed++
			continue
		}
		if entry, ok := lifecycle.Reconcile(entries[idx], now); ok {
			entries[idx] = entry
			changed++
		}
	}

	if changed > 0 {
		logger.Info("Backfilled history", "from", from, "to", today, "changed", changed)
	}
	return entries, changed, nil
}

// PlanOneShotSoon replaces today's entry with one that opens leadTime from
// now and accepts answers at any time. It ignores the daily throttle.
func (e *Engine) PlanOneShotSoon(ctx context.Context, leadTime time.Duration) (models.DayEntry, error) {
	now, today := e.clock()
	return e.planManual(ctx, today, now.Add(leadTime), true)
}

// PlanAt replaces the entry for the day containing moment with one whose
// window opens at moment. It ignores the daily throttle.
func (e *Engine) PlanAt(ctx context.Context, moment time.Time) (models.DayEntry, error) {
	_, today := e.clock()
	day := utils.DayKey(moment, e.cfg.Location)
	if day < today {
		return models.DayEntry{}, fmt.Errorf("%w: %s", apperrors.ErrPastDay, day)
	}
	return e.planManual(ctx, day, moment.In(e.cfg.Location), false)
}

func (e *Engine) planManual(ctx context.Context, day string, fire time.Time, allowEarly bool) (models.DayEntry, error) {
	var entry models.DayEntry
	err := e.exclusive(ctx, func(ctx context.Context) error {
		var err error
		entry, err = e.replaceEntry(ctx, day, fire, allowEarly)
		return err
	})
	if err == nil {
		e.emitChanged()
	}
	return entry, err
}

func (e *Engine) replaceEntry(ctx context.Context, day string, fire time.Time, allowEarly bool) (models.DayEntry, error) {
	now, _ := e.clock()

	entries, err := e.entries.LoadEntries(ctx)
	if err != nil {
		return models.DayEntry{}, &apperrors.StorageError{Op: "load entries", Err: err}
	}
	entries = dedupeByDay(entries)

	var entry models.DayEntry
	if idx := indexOf(entries, day); idx >= 0 {
		entry = lifecycle.Replan(entries[idx], fire, e.cfg.WindowDuration, allowEarly, now)
		entries[idx] = entry
	} else {
		entry = lifecycle.NewPending(day, fire, e.cfg.WindowDuration, allowEarly, now)
		entries = append(entries, entry)
	}

	if err := e.entries.SaveEntries(ctx, entries); err != nil {
		return models.DayEntry{}, &apperrors.StorageError{Op: "save entries", Err: err}
	}
	if err := e.notifier.Schedule(ctx, AlertID(day), fire); err != nil {
		logger.Warn("Failed to arm alert", "day", day, "error", err)
	}
	logger.Info("Manual plan", "day", day, "opens", fire, "allow_early", allowEarly)
	return entry, nil
}
