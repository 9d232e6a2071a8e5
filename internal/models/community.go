package models

import (
	"time"

	"github.com/julianstephens/stride/internal/constants"
)

type Community struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	GoalType    constants.GoalType `json:"goal_type,omitempty"` // empty accepts any goal type
	InviteCode  string             `json:"invite_code"`
	CreatedBy   string             `json:"created_by"`
	MaxMembers  int                `json:"max_members"`
	CreatedAt   time.Time          `json:"created_at"`
}

type CommunityMember struct {
	CommunityID string    `json:"community_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Activity is one entry in a community feed
type Activity struct {
	ID          string                 `json:"id"`
	CommunityID string                 `json:"community_id"`
	UserID      string                 `json:"user_id"`
	Type        constants.ActivityType `json:"type"`
	Message     string                 `json:"message"`
	CreatedAt   time.Time              `json:"created_at"`
}

// LeaderboardEntry is one ranked member
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// Encouragement is a cheer, nudge or reaction sent from one member to another.
// Reactions point at the feed entry they react to; FeedID is the feed row the
// encouragement itself produced.
type Encouragement struct {
	ID          string                      `json:"id"`
	Type        constants.EncouragementType `json:"type"`
	FromUserID  string                      `json:"from_user_id"`
	ToUserID    string                      `json:"to_user_id"`
	CommunityID string                      `json:"community_id"`
	ActivityID  string                      `json:"activity_id,omitempty"`
	FeedID      string                      `json:"-"`
	Emoji       string                      `json:"emoji,omitempty"`
	Message     string                      `json:"message,omitempty"`
	Day         string                      `json:"day"`
	Read        bool                        `json:"read"`
	CreatedAt   time.Time                   `json:"created_at"`
}
