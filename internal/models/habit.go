package models

import (
	"time"

	"github.com/julianstephens/stride/internal/constants"
)

// Habit is a daily practice, optionally attached to a goal.
// CurrentStreak and LongestStreak are a cache owned by the streak path;
// nothing else writes them.
type Habit struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	GoalID        string              `json:"goal_id,omitempty"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Frequency     constants.Frequency `json:"frequency"`
	TemplateID    string              `json:"template_id,omitempty"`
	Color         string              `json:"color,omitempty"`
	CurrentStreak int                 `json:"current_streak"`
	LongestStreak int                 `json:"longest_streak"`
	CreatedAt     time.Time           `json:"created_at"`
}

// IsConflictTemplate reports whether the habit belongs to the omad/moran/autophagy group.
func (h Habit) IsConflictTemplate() bool {
	switch h.TemplateID {
	case constants.TemplateOMAD, constants.TemplateMoran, constants.TemplateAutophagy:
		return true
	}
	return false
}

// HabitLog is the single record for a habit on a calendar day
type HabitLog struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Streak is the computed streak pair for a habit
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// StreakShield protects one calendar day of a user's streaks
type StreakShield struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	HabitID   string    `json:"habit_id,omitempty"`
	Day       string    `json:"day"` // the day the shield covers
	UsedAt    time.Time `json:"used_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
