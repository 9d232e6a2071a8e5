package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/stride/internal/conflict"
	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/projection"
	"github.com/julianstephens/stride/internal/snapshot"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/templates"
	"github.com/julianstephens/stride/internal/utils"
	"github.com/julianstephens/stride/internal/validation"
)

// durationWeeks returns ceil(days(start→deadline) / 7) and rejects goals
// shorter than the minimum duration.
func durationWeeks(start, deadline string) (int, error) {
	days, err := utils.DaysBetween(start, deadline)
	if err != nil {
		return 0, apperrors.Invalid("deadline", "%v", err)
	}
	if days <= 0 {
		return 0, apperrors.Invalid("deadline", "Deadline must be after the start date")
	}
	weeks := (days + constants.DaysPerWeek - 1) / constants.DaysPerWeek
	if weeks < constants.MinGoalWeeks {
		return 0, apperrors.Invalid("deadline", "Goal must span at least %d weeks (got %d)", constants.MinGoalWeeks, weeks)
	}
	return weeks, nil
}

func checkTarget(goalType constants.GoalType, start, target float64) error {
	switch goalType {
	case constants.GoalWeightLoss:
		if target >= start {
			return apperrors.Invalid("target_value", "Target weight must be less than current weight")
		}
	case constants.GoalReading:
		if target <= start {
			return apperrors.Invalid("target_value", "Target books must be greater than books already read")
		}
	}
	return nil
}

// CreateGoal creates a goal without habits.
func (s *Service) CreateGoal(ctx context.Context, userID string, req validation.GoalRequest) (models.Goal, error) {
	req.Habits = nil
	goal, _, err := s.CreateGoalWithHabits(ctx, userID, req)
	return goal, err
}

// CreateGoalWithHabits creates the goal, its habits and the week-0 baseline
// snapshot in one transaction.
func (s *Service) CreateGoalWithHabits(ctx context.Context, userID string, req validation.GoalRequest) (models.Goal, []models.Habit, error) {
	if err := req.Validate(); err != nil {
		return models.Goal{}, nil, err
	}
	today, err := s.Today(ctx)
	if err != nil {
		return models.Goal{}, nil, err
	}
	gt, err := templates.ForGoal(req.Type)
	if err != nil {
		return models.Goal{}, nil, apperrors.Invalid("type", "%v", err)
	}

	start := req.StartDate
	if start == "" {
		start = today
	}
	weeks, err := durationWeeks(start, req.Deadline)
	if err != nil {
		return models.Goal{}, nil, err
	}
	if err := checkTarget(req.Type, req.StartValue, req.TargetValue); err != nil {
		return models.Goal{}, nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = gt.Unit
	}
	goal := models.Goal{
		ID:            newID(),
		UserID:        userID,
		Type:          req.Type,
		Title:         strings.TrimSpace(req.Title),
		StartValue:    req.StartValue,
		TargetValue:   req.TargetValue,
		CurrentValue:  req.StartValue,
		Unit:          unit,
		StartDate:     start,
		Deadline:      req.Deadline,
		DurationWeeks: weeks,
		CreatedAt:     s.Now(),
	}

	habits := make([]models.Habit, 0, len(req.Habits))
	for _, hr := range req.Habits {
		h, err := s.buildHabit(goal, userID, hr)
		if err != nil {
			return models.Goal{}, nil, err
		}
		habits = append(habits, h)
	}

	baseline, err := snapshot.Baseline(goal, len(habits), today)
	if err != nil {
		return models.Goal{}, nil, err
	}
	baseline.ID = newID()
	baseline.CreatedAt = goal.CreatedAt
	baseline.UpdatedAt = goal.CreatedAt

	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.AddGoal(ctx, goal); err != nil {
			return err
		}
		for _, h := range habits {
			if err := tx.AddHabit(ctx, h); err != nil {
				return err
			}
		}
		if _, err := tx.InsertWeeklyProgress(ctx, baseline); err != nil {
			return fmt.Errorf("writing baseline snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Goal{}, nil, err
	}
	logger.Info("Created goal", "goal", goal.ID, "user", userID, "weeks", weeks, "habits", len(habits))
	return goal, habits, nil
}

func (s *Service) GetGoal(ctx context.Context, goalID string) (models.Goal, error) {
	return s.store.GetGoal(ctx, goalID)
}

func (s *Service) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

// UpdateGoal changes the title, target or deadline. The deadline and target
// are validated against the goal's start date and start value.
func (s *Service) UpdateGoal(ctx context.Context, goalID string, req validation.GoalUpdateRequest) (models.Goal, error) {
	if err := req.Validate(); err != nil {
		return models.Goal{}, err
	}
	var goal models.Goal
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		g, err := tx.GetGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if req.Title != nil {
			g.Title = strings.TrimSpace(*req.Title)
		}
		if req.TargetValue != nil {
			if err := checkTarget(g.Type, g.StartValue, *req.TargetValue); err != nil {
				return err
			}
			g.TargetValue = *req.TargetValue
		}
		if req.Deadline != nil {
			weeks, err := durationWeeks(g.StartDate, *req.Deadline)
			if err != nil {
				return err
			}
			g.Deadline = *req.Deadline
			g.DurationWeeks = weeks
		}
		goal = g
		return tx.UpdateGoal(ctx, g)
	})
	return goal, err
}

// DeleteGoal removes the goal with its habits, logs and snapshots.
func (s *Service) DeleteGoal(ctx context.Context, goalID string) error {
	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return err
	}
	logger.Info("Deleted goal", "goal", goalID)
	return nil
}

// LogProgress records a measurement for today and makes it the goal's
// current value. Reaching the target counts toward goal achievements.
func (s *Service) LogProgress(ctx context.Context, req validation.MetricRequest) (models.ProgressLog, models.Goal, error) {
	if err := req.Validate(); err != nil {
		return models.ProgressLog{}, models.Goal{}, err
	}
	today, err := s.Today(ctx)
	if err != nil {
		return models.ProgressLog{}, models.Goal{}, err
	}

	var (
		entry       models.ProgressLog
		goal        models.Goal
		wasComplete bool
	)
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		g, err := tx.GetGoal(ctx, req.GoalID)
		if err != nil {
			return err
		}
		wasComplete = g.IsComplete()
		entry = models.ProgressLog{
			ID:        newID(),
			GoalID:    g.ID,
			Day:       today,
			Value:     req.Value,
			Notes:     req.Notes,
			CreatedAt: s.Now(),
		}
		if err := tx.AddProgressLog(ctx, entry); err != nil {
			return err
		}
		g.CurrentValue = req.Value
		goal = g
		return tx.UpdateGoal(ctx, g)
	})
	if err != nil {
		return models.ProgressLog{}, models.Goal{}, err
	}

	if !wasComplete && goal.IsComplete() {
		s.goalAchieved(ctx, goal)
	}
	return entry, goal, nil
}

func (s *Service) goalAchieved(ctx context.Context, goal models.Goal) {
	completed, err := s.completedGoals(ctx, goal.UserID)
	if err != nil {
		observability.RecordFanoutFailure("achievement")
		logger.Warn("Failed to count completed goals", "user", goal.UserID, "error", err)
	} else {
		ids, err := s.unlock(ctx, goal.UserID, constants.CategoryGoals, completed, "")
		if err != nil {
			observability.RecordFanoutFailure("achievement")
			logger.Warn("Failed to check goal achievements", "user", goal.UserID, "error", err)
		}
		s.announceUnlocks(ctx, ids)
	}
	s.publish(ctx, goal.UserID, constants.ActivityGoalAchieved, fmt.Sprintf("achieved the goal %q", goal.Title))
	s.notify(ctx, fmt.Sprintf("🏆 Goal achieved: %s", goal.Title))
}

func (s *Service) completedGoals(ctx context.Context, userID string) (int, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return 0, err
	}
	completed := 0
	for _, g := range goals {
		if g.IsComplete() {
			completed++
		}
	}
	return completed, nil
}

// ProjectCompletion extrapolates the goal's completion date from its average
// daily progress since creation.
func (s *Service) ProjectCompletion(ctx context.Context, goalID string) (projection.Projection, error) {
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return projection.Projection{}, err
	}
	return projection.Project(goal, s.Now()), nil
}

// MaxAchievableForDay is the number of the goal's habits that can count as
// completed on day once the fasting conflict rule is applied.
func (s *Service) MaxAchievableForDay(ctx context.Context, goalID, day string) (int, error) {
	if _, err := utils.ParseDay(day); err != nil {
		return 0, apperrors.Invalid("day", "%v", err)
	}
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return 0, err
	}
	habits, err := s.store.ListGoalHabits(ctx, goal.ID)
	if err != nil {
		return 0, err
	}
	logs, err := s.store.ListUserLogs(ctx, goal.UserID, day, day)
	if err != nil {
		return 0, err
	}
	return conflict.MaxAchievable(habits, logs, day), nil
}

// HabitDay is a habit with its log state on one day.
type HabitDay struct {
	Habit     models.Habit `json:"habit"`
	Completed bool         `json:"completed"`
	Notes     string       `json:"notes,omitempty"`
}

// GoalDay groups a day's habits under their goal. Goal is nil for habits
// not attached to a goal.
type GoalDay struct {
	Goal          *models.Goal `json:"goal,omitempty"`
	Habits        []HabitDay   `json:"habits"`
	Completed     int          `json:"completed"`
	MaxAchievable int          `json:"max_achievable"`
	Percent       int          `json:"percent"`
}

type DayView struct {
	Day      string    `json:"day"`
	Today    string    `json:"today"`
	ReadOnly bool      `json:"read_only"`
	Groups   []GoalDay `json:"groups"`
}

// Day assembles the user's habits for day grouped by goal. Days other than
// today are read-only.
func (s *Service) Day(ctx context.Context, userID, day string) (DayView, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return DayView{}, err
	}
	if day == "" {
		day = today
	}
	if _, err := utils.ParseDay(day); err != nil {
		return DayView{}, apperrors.Invalid("day", "%v", err)
	}

	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return DayView{}, err
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return DayView{}, err
	}
	logs, err := s.store.ListUserLogs(ctx, userID, day, day)
	if err != nil {
		return DayView{}, err
	}
	byHabit := make(map[string]models.HabitLog, len(logs))
	for _, l := range logs {
		byHabit[l.HabitID] = l
	}

	view := DayView{Day: day, Today: today, ReadOnly: day != today}
	group := func(goal *models.Goal, hs []models.Habit) {
		if len(hs) == 0 && goal == nil {
			return
		}
		g := GoalDay{Goal: goal, Habits: make([]HabitDay, 0, len(hs))}
		for _, h := range hs {
			l := byHabit[h.ID]
			g.Habits = append(g.Habits, HabitDay{Habit: h, Completed: l.Completed, Notes: l.Notes})
		}
		g.MaxAchievable = conflict.MaxAchievable(hs, logs, day)
		g.Completed = conflict.CompletedCount(hs, logs, day)
		if g.MaxAchievable > 0 {
			g.Percent = g.Completed * 100 / g.MaxAchievable
		}
		view.Groups = append(view.Groups, g)
	}

	for i := range goals {
		var hs []models.Habit
		for _, h := range habits {
			if h.GoalID == goals[i].ID {
				hs = append(hs, h)
			}
		}
		group(&goals[i], hs)
	}
	var loose []models.Habit
	for _, h := range habits {
		if h.GoalID == "" {
			loose = append(loose, h)
		}
	}
	group(nil, loose)
	return view, nil
}
