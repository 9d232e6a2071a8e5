package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// Store is the data surface used by the tracker. Every method runs in the
// transaction it was obtained from when called inside Provider.WithTx.
type Store interface {
	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Goals. An empty userID lists every user's goals.
	AddGoal(ctx context.Context, goal models.Goal) error
	GetGoal(ctx context.Context, id string) (models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, goal models.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	// Progress logs
	AddProgressLog(ctx context.Context, log models.ProgressLog) error
	LatestProgressLog(ctx context.Context, goalID string) (models.ProgressLog, error)
	ListProgressLogs(ctx context.Context, goalID string) ([]models.ProgressLog, error)

	// Habits. An empty userID lists every user's habits.
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]models.Habit, error)
	ListGoalHabits(ctx context.Context, goalID string) ([]models.Habit, error)
	UpdateHabitStreak(ctx context.Context, habitID string, streak models.Streak) error
	DeleteHabit(ctx context.Context, id string) error

	// Habit logs. Empty from/to bounds are open.
	UpsertHabitLog(ctx context.Context, log models.HabitLog) (models.HabitLog, error)
	GetHabitLog(ctx context.Context, habitID, day string) (models.HabitLog, error)
	ListHabitLogs(ctx context.Context, habitID, from, to string) ([]models.HabitLog, error)
	ListUserLogs(ctx context.Context, userID, from, to string) ([]models.HabitLog, error)
	CountCompletedLogs(ctx context.Context, userID string, templates []string) (int, error)

	// Weekly snapshots
	GetWeeklyProgress(ctx context.Context, goalID string, week int) (models.WeeklyProgress, error)
	// UpsertWeeklyProgress overwrites the (goal, week) row, keeping its id and created_at.
	UpsertWeeklyProgress(ctx context.Context, wp models.WeeklyProgress) (models.WeeklyProgress, error)
	// InsertWeeklyProgress writes only if the (goal, week) row is absent.
	InsertWeeklyProgress(ctx context.Context, wp models.WeeklyProgress) (bool, error)
	ListWeeklyProgress(ctx context.Context, goalID string) ([]models.WeeklyProgress, error)

	// Achievements
	InsertMissingAchievements(ctx context.Context, entries []models.Achievement) (int, error)
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	ListUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
	// UnlockAchievement reports false when the unlock already existed.
	UnlockAchievement(ctx context.Context, ua models.UserAchievement) (bool, error)
	DeleteUserAchievements(ctx context.Context, userID string, ids []string) (int, error)

	// Streak shields
	AddShield(ctx context.Context, shield models.StreakShield) error
	LatestShield(ctx context.Context, userID string) (models.StreakShield, error)
	ListShields(ctx context.Context, userID string) ([]models.StreakShield, error)

	// Communities
	AddCommunity(ctx context.Context, c models.Community) error
	GetCommunity(ctx context.Context, id string) (models.Community, error)
	GetCommunityByInviteCode(ctx context.Context, code string) (models.Community, error)
	ListUserCommunities(ctx context.Context, userID string) ([]models.Community, error)
	UpdateInviteCode(ctx context.Context, communityID, code string) error
	AddMember(ctx context.Context, m models.CommunityMember) error
	GetMember(ctx context.Context, communityID, userID string) (models.CommunityMember, error)
	ListMembers(ctx context.Context, communityID string) ([]models.CommunityMember, error)
	RemoveMember(ctx context.Context, communityID, userID string) error
	AddActivity(ctx context.Context, a models.Activity) error
	ListActivity(ctx context.Context, communityID string, limit int) ([]models.Activity, error)
	CountActivitySince(ctx context.Context, communityID, userID string, since time.Time) (int, error)
	GetActivity(ctx context.Context, id string) (models.Activity, error)
	DeleteActivity(ctx context.Context, id string) error

	// Encouragements. AddEncouragement returns ErrDuplicate for a second
	// nudge to the same person on the same day or a repeated reaction.
	AddEncouragement(ctx context.Context, e models.Encouragement) error
	GetReaction(ctx context.Context, activityID, fromUserID, emoji string) (models.Encouragement, error)
	DeleteEncouragement(ctx context.Context, id string) error
	CountEncouragementsSent(ctx context.Context, fromUserID string, kind constants.EncouragementType) (int, error)
	ListEncouragements(ctx context.Context, toUserID string, unreadOnly bool) ([]models.Encouragement, error)
	// MarkEncouragementsRead marks the recipient's encouragements read; no
	// ids means all of them. It returns how many changed.
	MarkEncouragementsRead(ctx context.Context, toUserID string, ids []string) (int, error)
	ListReactions(ctx context.Context, activityIDs []string) ([]models.Encouragement, error)
}

// Provider is a Store backed by a database with a lifecycle.
type Provider interface {
	Store

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// WithTx runs fn in one transaction, committed when fn returns nil.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by backends with a versioned schema.
type Migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
