package models

import (
	"time"

	"github.com/julianstephens/stride/internal/constants"
)

// Goal is a measurable target with a deadline. StartValue is the metric when
// the goal was created (starting weight, or books already read).
type Goal struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	Type          constants.GoalType `json:"type"`
	Title         string             `json:"title"`
	StartValue    float64            `json:"start_value"`
	TargetValue   float64            `json:"target_value"`
	CurrentValue  float64            `json:"current_value"`
	Unit          string             `json:"unit"`
	StartDate     string             `json:"start_date"` // YYYY-MM-DD
	Deadline      string             `json:"deadline"`   // YYYY-MM-DD
	DurationWeeks int                `json:"duration_weeks"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Decreasing reports whether progress on the goal means a falling metric.
func (g Goal) Decreasing() bool {
	return g.Type == constants.GoalWeightLoss
}

// IsComplete reports whether the current value has reached the target.
func (g Goal) IsComplete() bool {
	if g.Decreasing() {
		return g.CurrentValue <= g.TargetValue
	}
	return g.CurrentValue >= g.TargetValue
}

// ProgressLog is an ad-hoc measurement for a goal
type ProgressLog struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goal_id"`
	Day       string    `json:"day"`
	Value     float64   `json:"value"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WeeklyProgress is the snapshot of a goal for one calendar week.
// Week 0 is the baseline written when the goal is created.
type WeeklyProgress struct {
	ID                   string    `json:"id"`
	GoalID               string    `json:"goal_id"`
	UserID               string    `json:"user_id"`
	WeekNumber           int       `json:"week_number"`
	SnapshotDate         string    `json:"snapshot_date"`
	WeekStart            string    `json:"week_start"`
	WeekEnd              string    `json:"week_end"`
	WeightValue          *float64  `json:"weight_value,omitempty"`
	BooksCompleted       *int      `json:"books_completed,omitempty"`
	HabitsCompletedCount int       `json:"habits_completed_count"`
	TotalHabitsAvailable int       `json:"total_habits_available"`
	CompletionRate       float64   `json:"completion_rate"`
	HasProgress          bool      `json:"has_progress"`
	ProgressDelta        *float64  `json:"progress_delta,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Metric returns the goal-type metric recorded on the snapshot, if any.
func (w WeeklyProgress) Metric() (float64, bool) {
	switch {
	case w.WeightValue != nil:
		return *w.WeightValue, true
	case w.BooksCompleted != nil:
		return float64(*w.BooksCompleted), true
	}
	return 0, false
}
