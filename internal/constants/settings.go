package constants

const (
	SettingTimezone             = "timezone"
	SettingUserID               = "user_id"
	SettingDisplayName          = "display_name"
	SettingRateWindowDays       = "rate_window_days"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingWeeklyCaptureWeekday = "weekly_capture_weekday"
	SettingWeeklyCaptureTime    = "weekly_capture_time"
	SettingLastStreakRefresh    = "last_streak_refresh"
	SettingLastWeeklyCapture    = "last_weekly_capture"

	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultDisplayName          = "me"
	DefaultRateWindowDays       = 7
	DefaultNotificationsEnabled = true
	DefaultWeeklyCaptureWeekday = "saturday"
	DefaultWeeklyCaptureTime    = "23:55"
	DefaultStreakRefreshTime    = "00:05"
)
