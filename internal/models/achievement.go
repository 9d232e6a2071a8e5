package models

import (
	"time"

	"github.com/julianstephens/stride/internal/constants"
)

// Achievement is a catalog entry. Requirement is compared against the
// observed counter for its category.
type Achievement struct {
	ID          string                        `json:"id" yaml:"id"`
	Name        string                        `json:"name" yaml:"name"`
	Description string                        `json:"description" yaml:"description"`
	Icon        string                        `json:"icon" yaml:"icon"`
	Category    constants.AchievementCategory `json:"category" yaml:"category"`
	Type        string                        `json:"type" yaml:"type"`
	Requirement int                           `json:"requirement" yaml:"requirement"`
	Rarity      constants.Rarity              `json:"rarity" yaml:"rarity"`
	// Templates restricts the entry to habits of these templates when the
	// triggering habit is known. Empty means any habit.
	Templates []string `json:"templates,omitempty" yaml:"templates"`
}

// UserAchievement records that a user unlocked an achievement
type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// AchievementStatus is a catalog entry joined with a user's unlock state
type AchievementStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
