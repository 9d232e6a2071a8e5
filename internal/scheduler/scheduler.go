// Package scheduler runs the periodic jobs: the weekly snapshot capture and
// the daily streak refresh.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/tracker"
	"github.com/julianstephens/stride/internal/utils"
)

const (
	JobWeeklyCapture = "weekly_capture"
	JobStreakRefresh = "streak_refresh"
)

// Tracker is the part of tracker.Service the scheduler drives.
type Tracker interface {
	Now() time.Time
	Settings(ctx context.Context) (models.Settings, error)
	CaptureWeeklySnapshot(ctx context.Context) (int, error)
	RefreshStreaks(ctx context.Context) (tracker.StreakRefresh, error)
	RecordWeeklyCapture(ctx context.Context, at time.Time) error
}

type Scheduler struct {
	tracker  Tracker
	interval time.Duration
	// lastWeekly is the last weekly occurrence already handled, loaded from
	// settings on the first tick
	lastWeekly time.Time
}

func New(t Tracker) *Scheduler {
	return &Scheduler{tracker: t, interval: time.Minute}
}

// Run checks for due jobs every minute until ctx is cancelled. Job failures
// are logged and counted; they never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Info("Scheduler started", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs every job that is due now and returns the names of the jobs run.
func (s *Scheduler) Tick(ctx context.Context) []string {
	settings, err := s.tracker.Settings(ctx)
	if err != nil {
		logger.Error("Scheduler could not load settings", "error", err)
		return nil
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Error("Scheduler has an invalid timezone", "timezone", settings.Timezone, "error", err)
		return nil
	}
	now := s.tracker.Now().In(loc)

	var ran []string
	if prev, err := weeklyOccurrence(settings, now); err != nil {
		logger.Error("Invalid weekly capture schedule", "error", err)
	} else if s.weeklyDue(ctx, settings, prev) {
		s.RunJob(ctx, JobWeeklyCapture)
		ran = append(ran, JobWeeklyCapture)
	}

	if dailyDue(settings, now) {
		s.RunJob(ctx, JobStreakRefresh)
		ran = append(ran, JobStreakRefresh)
	}
	return ran
}

// RunJob runs one job by name, recording its duration and outcome.
func (s *Scheduler) RunJob(ctx context.Context, job string) error {
	started := time.Now()
	var err error
	switch job {
	case JobWeeklyCapture:
		var n int
		n, err = s.tracker.CaptureWeeklySnapshot(ctx)
		if err == nil {
			logger.Info("Weekly capture ran", "snapshots", n)
		}
	case JobStreakRefresh:
		var r tracker.StreakRefresh
		r, err = s.tracker.RefreshStreaks(ctx)
		if err == nil {
			logger.Info("Streak refresh ran", "day", r.Day, "habits", r.Habits, "broken", r.Broken)
		}
	default:
		return fmt.Errorf("unknown job %q", job)
	}
	observability.RecordJob(job, time.Since(started), err)
	if err != nil {
		logger.Error("Scheduled job failed", "job", job, "error", err)
	}
	return err
}

// weeklyDue reports whether the occurrence prev has not been handled yet and
// marks it handled before the job runs, so a failed capture waits for the next
// week. The marker is persisted: an occurrence missed while the process was
// down runs once on the next start. Without a marker, prev is recorded and
// skipped.
func (s *Scheduler) weeklyDue(ctx context.Context, settings models.Settings, prev time.Time) bool {
	if s.lastWeekly.IsZero() {
		last, err := time.Parse(time.RFC3339, settings.LastWeeklyCapture)
		if err != nil {
			if settings.LastWeeklyCapture != "" {
				logger.Warn("Ignoring unreadable weekly capture marker", "value", settings.LastWeeklyCapture)
			}
			s.markWeekly(ctx, prev)
			return false
		}
		s.lastWeekly = last
	}
	if !prev.After(s.lastWeekly) {
		return false
	}
	s.markWeekly(ctx, prev)
	return true
}

func (s *Scheduler) markWeekly(ctx context.Context, at time.Time) {
	s.lastWeekly = at
	if err := s.tracker.RecordWeeklyCapture(ctx, at); err != nil {
		logger.Warn("Failed to record weekly capture", "error", err)
	}
}

func weeklyOccurrence(settings models.Settings, now time.Time) (time.Time, error) {
	weekday, err := utils.ParseWeekday(settings.WeeklyCaptureWeekday)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := utils.ParseTimeOfDay(settings.WeeklyCaptureTime)
	if err != nil {
		return time.Time{}, err
	}
	return PreviousOccurrence(now, weekday, hour, minute), nil
}

// dailyDue reports whether today's streak refresh has not run yet and the
// refresh time has passed. The last run is persisted, so a restart after
// midnight still refreshes once.
func dailyDue(settings models.Settings, now time.Time) bool {
	today := now.Format(constants.DateFormat)
	if settings.LastStreakRefresh == today {
		return false
	}
	hour, minute, _ := utils.ParseTimeOfDay(constants.DefaultStreakRefreshTime)
	return now.Hour()*60+now.Minute() >= hour*60+minute
}

// PreviousOccurrence returns the latest weekday at hour:minute that is not
// after now, in now's location.
func PreviousOccurrence(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	back := (int(now.Weekday()) - int(weekday) + 7) % 7
	day := now.AddDate(0, 0, -back)
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	if at.After(now) {
		at = at.AddDate(0, 0, -7)
	}
	return at
}

// NextOccurrence returns the first weekday at hour:minute strictly after now.
func NextOccurrence(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	return PreviousOccurrence(now, weekday, hour, minute).AddDate(0, 0, 7)
}

// NextWeeklyCapture reports when the weekly capture will next run.
func NextWeeklyCapture(settings models.Settings, now time.Time) (time.Time, error) {
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	weekday, err := utils.ParseWeekday(settings.WeeklyCaptureWeekday)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := utils.ParseTimeOfDay(settings.WeeklyCaptureTime)
	if err != nil {
		return time.Time{}, err
	}
	return NextOccurrence(now.In(loc), weekday, hour, minute), nil
}
