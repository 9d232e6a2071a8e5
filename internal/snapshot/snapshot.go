// Package snapshot builds weekly goal snapshots.
//
// Weeks are calendar weeks starting on Sunday. Week 0 is the calendar week
// containing the goal's start date and week N is the N-th calendar week after
// it, so a snapshot's number and its [WeekStart, WeekEnd] window always agree.
package snapshot

import (
	"fmt"
	"math"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/utils"
)

// Bounds returns the Sunday and Saturday of the calendar week containing day.
func Bounds(day string) (string, string, error) {
	start, err := utils.WeekStart(day)
	if err != nil {
		return "", "", err
	}
	return start, utils.AddDays(start, constants.DaysPerWeek-1), nil
}

// WeekNumber returns the calendar-week index of day relative to startDate.
// Days before the goal's first week are reported as week 0.
func WeekNumber(startDate, day string) (int, error) {
	goalWeek, err := utils.WeekStart(startDate)
	if err != nil {
		return 0, fmt.Errorf("goal start date: %w", err)
	}
	dayWeek, err := utils.WeekStart(day)
	if err != nil {
		return 0, err
	}
	days, err := utils.DaysBetween(goalWeek, dayWeek)
	if err != nil {
		return 0, err
	}
	return max(0, days/constants.DaysPerWeek), nil
}

// Input is everything Build reads. Logs may cover any range; only completed
// logs inside the week window are counted.
type Input struct {
	Goal   models.Goal
	Habits []models.Habit
	Logs   []models.HabitLog
	// LatestProgress is the most recent progress-log value, if any
	LatestProgress *float64
	// Metric is an explicit value from the manual path; it wins over the goal's stored values
	Metric   *float64
	Previous *models.WeeklyProgress
	Today    string
	Notes    string
}

// Build computes the snapshot for the week containing in.Today. The result
// carries no ID or timestamps; the store assigns those on upsert.
func Build(in Input) (models.WeeklyProgress, error) {
	week, err := WeekNumber(in.Goal.StartDate, in.Today)
	if err != nil {
		return models.WeeklyProgress{}, err
	}
	start, end, err := Bounds(in.Today)
	if err != nil {
		return models.WeeklyProgress{}, err
	}

	habitIDs := make(map[string]bool, len(in.Habits))
	for _, h := range in.Habits {
		habitIDs[h.ID] = true
	}
	completed := 0
	for _, l := range in.Logs {
		if l.Completed && habitIDs[l.HabitID] && l.Day >= start && l.Day <= end {
			completed++
		}
	}
	total := len(in.Habits) * constants.DaysPerWeek

	wp := models.WeeklyProgress{
		GoalID:               in.Goal.ID,
		UserID:               in.Goal.UserID,
		WeekNumber:           week,
		SnapshotDate:         in.Today,
		WeekStart:            start,
		WeekEnd:              end,
		HabitsCompletedCount: completed,
		TotalHabitsAvailable: total,
		CompletionRate:       Rate(completed, total),
		Notes:                in.Notes,
	}
	setMetric(&wp, in.Goal.Type, resolveMetric(in))

	if in.Previous != nil {
		if prev, ok := in.Previous.Metric(); ok {
			cur, _ := wp.Metric()
			has, delta := Delta(in.Goal.Type, prev, cur)
			wp.HasProgress = has
			wp.ProgressDelta = &delta
		}
	}
	return wp, nil
}

// Baseline is the week-0 snapshot written when a goal is created.
func Baseline(goal models.Goal, habitCount int, today string) (models.WeeklyProgress, error) {
	start, end, err := Bounds(goal.StartDate)
	if err != nil {
		return models.WeeklyProgress{}, err
	}
	wp := models.WeeklyProgress{
		GoalID:               goal.ID,
		UserID:               goal.UserID,
		WeekNumber:           0,
		SnapshotDate:         today,
		WeekStart:            start,
		WeekEnd:              end,
		TotalHabitsAvailable: habitCount * constants.DaysPerWeek,
		Notes:                "Baseline",
	}
	setMetric(&wp, goal.Type, goal.CurrentValue)
	return wp, nil
}

// Delta compares this week's metric with last week's. Weight improves by
// going down, books by going up; delta is signed so that positive is progress.
func Delta(goalType constants.GoalType, previous, current float64) (bool, float64) {
	if goalType == constants.GoalWeightLoss {
		return current < previous, previous - current
	}
	return current > previous, current - previous
}

// Rate is 100 * completed / total, 0 when nothing was available.
func Rate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}

func resolveMetric(in Input) float64 {
	if in.Metric != nil {
		return *in.Metric
	}
	if in.Goal.Type == constants.GoalWeightLoss && in.LatestProgress != nil {
		return *in.LatestProgress
	}
	return in.Goal.CurrentValue
}

func setMetric(wp *models.WeeklyProgress, goalType constants.GoalType, value float64) {
	if goalType == constants.GoalWeightLoss {
		wp.WeightValue = &value
		wp.BooksCompleted = nil
		return
	}
	books := int(math.Round(value))
	wp.BooksCompleted = &books
	wp.WeightValue = nil
}
