package constants

// GoalType identifies what a goal measures
type GoalType string

// Frequency is the informational cadence of a habit
type Frequency string

// AchievementCategory groups catalog entries by what unlocks them
type AchievementCategory string

// Rarity is the display tier of an achievement
type Rarity string

// ActivityType identifies an entry in a community activity feed
type ActivityType string

// LeaderboardKind selects how community members are ranked
type LeaderboardKind string

// EncouragementType distinguishes cheers, nudges and feed reactions
type EncouragementType string

const (
	GoalWeightLoss GoalType = "weight-loss"
	GoalReading    GoalType = "reading"

	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyFlexible Frequency = "flexible"

	// Conflict-group templates
	TemplateOMAD      = "omad"
	TemplateMoran     = "moran"
	TemplateAutophagy = "autophagy"
	TemplateCustom    = "custom"

	// MinGoalWeeks is the shortest goal duration accepted at creation
	MinGoalWeeks = 12
	// StreakLookbackDays bounds the backward streak walk
	StreakLookbackDays = 365
	// DefaultRateWindow is the trailing window for completion rates
	DefaultRateWindow = 7
	// DaysPerWeek is the per-habit weekly denominator
	DaysPerWeek = 7

	// Streak shields
	ShieldCooldownDays = 7
	ShieldValidHours   = 24

	// Communities
	InviteCodeLength      = 6
	InviteCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	InviteCodeMaxAttempts = 5
	DefaultMaxMembers     = 10
	CommunityRoleAdmin    = "admin"
	CommunityRoleMember   = "member"
	DefaultFeedLimit      = 50
	LeaderboardWindowDays = 7

	CategoryStreak      AchievementCategory = "streak"
	CategoryGoals       AchievementCategory = "goals"
	CategorySocial      AchievementCategory = "social"
	// CategoryConsistency counts total completed sessions rather than a streak
	CategoryConsistency AchievementCategory = "consistency"

	// Achievement types. Only streak-type unlocks are revocable.
	AchievementTypeStreak = "streak"
	AchievementTypeGoal   = "goal"
	AchievementTypeSocial = "social"

	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"

	ActivityHabitCompleted  ActivityType = "habit_completed"
	ActivityStreakMilestone ActivityType = "streak_milestone"
	ActivityGoalAchieved    ActivityType = "goal_achieved"
	ActivityMemberJoined    ActivityType = "member_joined"
	ActivityShieldUsed      ActivityType = "streak_shield_used"
	ActivityCheerSent       ActivityType = "cheer_sent"
	ActivityNudgeSent       ActivityType = "nudge_sent"
	ActivityReaction        ActivityType = "reaction"

	EncouragementCheer    EncouragementType = "cheer"
	EncouragementNudge    EncouragementType = "nudge"
	EncouragementReaction EncouragementType = "reaction"

	DefaultCheerMessage = "Keep it up! 🎉"
	DefaultNudgeMessage = "Hey! Don't forget to complete your habits today! 💪"
	// MaxEmojiLength bounds a reaction in bytes
	MaxEmojiLength = 16
	// UnknownSender names the sender of an encouragement who shares no
	// community with the recipient anymore
	UnknownSender = "A friend"

	LeaderboardStreak     LeaderboardKind = "streak"
	LeaderboardCompletion LeaderboardKind = "completion"
	LeaderboardActivity   LeaderboardKind = "activity"

	// Snapshot capture paths, used as metric labels
	CaptureScheduled = "scheduled"
	CaptureManual    = "manual"
)

// StreakMilestones are the streak lengths that produce a feed entry
var StreakMilestones = []int{7, 14, 30, 60, 90, 100, 180, 365}
