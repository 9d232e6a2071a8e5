package tracker

import (
	"context"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/snapshot"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/utils"
	"github.com/julianstephens/stride/internal/validation"
)

// buildSnapshot computes the goal's snapshot for the week containing today,
// comparing against week N-1 when it exists.
func (s *Service) buildSnapshot(ctx context.Context, st storage.Store, goal models.Goal, today string, metric *float64, notes string) (models.WeeklyProgress, error) {
	week, err := snapshot.WeekNumber(goal.StartDate, today)
	if err != nil {
		return models.WeeklyProgress{}, err
	}
	start, end, err := snapshot.Bounds(today)
	if err != nil {
		return models.WeeklyProgress{}, err
	}
	habits, err := st.ListGoalHabits(ctx, goal.ID)
	if err != nil {
		return models.WeeklyProgress{}, err
	}
	logs, err := st.ListUserLogs(ctx, goal.UserID, start, end)
	if err != nil {
		return models.WeeklyProgress{}, err
	}

	in := snapshot.Input{
		Goal:   goal,
		Habits: habits,
		Logs:   logs,
		Metric: metric,
		Today:  today,
		Notes:  notes,
	}
	latest, err := st.LatestProgressLog(ctx, goal.ID)
	switch {
	case err == nil:
		in.LatestProgress = &latest.Value
	case !apperrors.IsNotFound(err):
		return models.WeeklyProgress{}, err
	}
	if week > 0 {
		prev, err := st.GetWeeklyProgress(ctx, goal.ID, week-1)
		switch {
		case err == nil:
			in.Previous = &prev
		case !apperrors.IsNotFound(err):
			return models.WeeklyProgress{}, err
		}
	}

	wp, err := snapshot.Build(in)
	if err != nil {
		return models.WeeklyProgress{}, err
	}
	now := s.Now()
	wp.ID = newID()
	wp.CreatedAt = now
	wp.UpdatedAt = now
	return wp, nil
}

// CaptureWeeklySnapshot writes this week's snapshot for every goal that has
// none yet. Goals past their deadline are skipped. A failing goal is logged
// and does not stop the run. Returns the number of snapshots written.
func (s *Service) CaptureWeeklySnapshot(ctx context.Context) (int, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return 0, err
	}
	goals, err := s.store.ListGoals(ctx, "")
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, goal := range goals {
		if today > goal.Deadline {
			logger.Debug("Skipping snapshot for goal past deadline", "goal", goal.ID, "deadline", goal.Deadline)
			observability.RecordSnapshot(constants.CaptureScheduled, "past_deadline")
			continue
		}
		inserted, week, err := s.captureGoal(ctx, goal, today)
		if err != nil {
			observability.RecordSnapshot(constants.CaptureScheduled, "error")
			logger.Error("Failed to capture weekly snapshot", "goal", goal.ID, "week", week, "error", err)
			continue
		}
		if !inserted {
			logger.Debug("Snapshot already exists", "goal", goal.ID, "week", week)
			observability.RecordSnapshot(constants.CaptureScheduled, "exists")
			continue
		}
		observability.RecordSnapshot(constants.CaptureScheduled, "written")
		processed++
	}
	logger.Info("Weekly snapshot capture finished", "day", today, "goals", len(goals), "written", processed)
	return processed, nil
}

func (s *Service) captureGoal(ctx context.Context, goal models.Goal, today string) (bool, int, error) {
	week, err := snapshot.WeekNumber(goal.StartDate, today)
	if err != nil {
		return false, 0, err
	}
	inserted := false
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetWeeklyProgress(ctx, goal.ID, week); err == nil {
			return nil
		} else if !apperrors.IsNotFound(err) {
			return err
		}
		wp, err := s.buildSnapshot(ctx, tx, goal, today, nil, "")
		if err != nil {
			return err
		}
		inserted, err = tx.InsertWeeklyProgress(ctx, wp)
		return err
	})
	return inserted, week, err
}

// LogWeeklyProgress records a metric for the current week. It is open on
// Sunday, or once the week's snapshot exists; re-submitting overwrites.
// The goal's current value is left unchanged.
func (s *Service) LogWeeklyProgress(ctx context.Context, req validation.MetricRequest) (models.WeeklyProgress, error) {
	if err := req.Validate(); err != nil {
		return models.WeeklyProgress{}, err
	}
	today, err := s.Today(ctx)
	if err != nil {
		return models.WeeklyProgress{}, err
	}

	var stored models.WeeklyProgress
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		goal, err := tx.GetGoal(ctx, req.GoalID)
		if err != nil {
			return err
		}
		week, err := snapshot.WeekNumber(goal.StartDate, today)
		if err != nil {
			return err
		}
		open, err := weeklyLogOpen(ctx, tx, goal.ID, week, today)
		if err != nil {
			return err
		}
		if !open {
			return apperrors.Conflict("Weekly progress can only be logged on Sunday or after this week's snapshot is captured")
		}
		value := req.Value
		wp, err := s.buildSnapshot(ctx, tx, goal, today, &value, req.Notes)
		if err != nil {
			return err
		}
		stored, err = tx.UpsertWeeklyProgress(ctx, wp)
		return err
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			observability.RecordSnapshot(constants.CaptureManual, "closed")
		}
		return models.WeeklyProgress{}, err
	}
	observability.RecordSnapshot(constants.CaptureManual, "written")
	logger.Info("Logged weekly progress", "goal", stored.GoalID, "week", stored.WeekNumber)
	return stored, nil
}

func weeklyLogOpen(ctx context.Context, st storage.Store, goalID string, week int, today string) (bool, error) {
	if isSunday(today) {
		return true, nil
	}
	_, err := st.GetWeeklyProgress(ctx, goalID, week)
	if err == nil {
		return true, nil
	}
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func isSunday(day string) bool {
	t, err := utils.ParseDay(day)
	return err == nil && t.Weekday() == time.Sunday
}

// WeekProgress is the live state of the current calendar week. The
// denominator only counts the days elapsed so far.
type WeekProgress struct {
	GoalID          string                 `json:"goal_id"`
	WeekNumber      int                    `json:"week_number"`
	WeekStart       string                 `json:"week_start"`
	WeekEnd         string                 `json:"week_end"`
	DaysElapsed     int                    `json:"days_elapsed"`
	HabitsCompleted int                    `json:"habits_completed"`
	HabitsAvailable int                    `json:"habits_available"`
	CompletionRate  float64                `json:"completion_rate"`
	Snapshot        *models.WeeklyProgress `json:"snapshot,omitempty"`
}

func (s *Service) CurrentWeekProgress(ctx context.Context, goalID string) (WeekProgress, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return WeekProgress{}, err
	}
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return WeekProgress{}, err
	}
	week, err := snapshot.WeekNumber(goal.StartDate, today)
	if err != nil {
		return WeekProgress{}, err
	}
	start, end, err := snapshot.Bounds(today)
	if err != nil {
		return WeekProgress{}, err
	}
	habits, err := s.store.ListGoalHabits(ctx, goal.ID)
	if err != nil {
		return WeekProgress{}, err
	}
	logs, err := s.store.ListUserLogs(ctx, goal.UserID, start, today)
	if err != nil {
		return WeekProgress{}, err
	}
	elapsed, err := utils.DaysBetween(start, today)
	if err != nil {
		return WeekProgress{}, err
	}
	elapsed++

	ids := make(map[string]bool, len(habits))
	for _, h := range habits {
		ids[h.ID] = true
	}
	completed := 0
	for _, l := range logs {
		if l.Completed && ids[l.HabitID] {
			completed++
		}
	}
	available := elapsed * len(habits)
	wp := WeekProgress{
		GoalID:          goal.ID,
		WeekNumber:      week,
		WeekStart:       start,
		WeekEnd:         end,
		DaysElapsed:     elapsed,
		HabitsCompleted: completed,
		HabitsAvailable: available,
		CompletionRate:  snapshot.Rate(completed, available),
	}
	if snap, err := s.store.GetWeeklyProgress(ctx, goal.ID, week); err == nil {
		wp.Snapshot = &snap
	} else if !apperrors.IsNotFound(err) {
		return WeekProgress{}, err
	}
	return wp, nil
}

// ProgressTimeline returns the goal's snapshots in week order, baseline first.
func (s *Service) ProgressTimeline(ctx context.Context, goalID string) ([]models.WeeklyProgress, error) {
	if _, err := s.store.GetGoal(ctx, goalID); err != nil {
		return nil, err
	}
	return s.store.ListWeeklyProgress(ctx, goalID)
}

type WeekLogStatus struct {
	WeekNumber  int  `json:"week_number"`
	HasSnapshot bool `json:"has_snapshot"`
	CanLog      bool `json:"can_log"`
}

func (s *Service) WeeklyLogStatus(ctx context.Context, goalID string) (WeekLogStatus, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return WeekLogStatus{}, err
	}
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return WeekLogStatus{}, err
	}
	week, err := snapshot.WeekNumber(goal.StartDate, today)
	if err != nil {
		return WeekLogStatus{}, err
	}
	status := WeekLogStatus{WeekNumber: week}
	if _, err := s.store.GetWeeklyProgress(ctx, goal.ID, week); err == nil {
		status.HasSnapshot = true
	} else if !apperrors.IsNotFound(err) {
		return WeekLogStatus{}, err
	}
	status.CanLog = status.HasSnapshot || isSunday(today)
	return status, nil
}
