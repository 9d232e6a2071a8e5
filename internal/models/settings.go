package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/stride/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	Timezone             string `json:"timezone"`               // IANA timezone name, or "Local"
	UserID               string `json:"user_id"`                // stable id of the local user
	DisplayName          string `json:"display_name"`           // shown in feeds and leaderboards
	RateWindowDays       int    `json:"rate_window_days"`       // default completion-rate window
	NotificationsEnabled bool   `json:"notifications_enabled"`  // desktop notifications for unlocks and milestones
	WeeklyCaptureWeekday string `json:"weekly_capture_weekday"` // day the scheduled snapshot runs
	WeeklyCaptureTime    string `json:"weekly_capture_time"`    // HH:MM in Timezone
	LastStreakRefresh    string `json:"last_streak_refresh"`    // YYYY-MM-DD of the last daily refresh
	LastWeeklyCapture    string `json:"last_weekly_capture"`    // RFC 3339 time of the last weekly occurrence handled
}

// DefaultSettings returns the settings written by `stride init`.
func DefaultSettings(userID string) Settings {
	return Settings{
		Timezone:             constants.DefaultTimezone,
		UserID:               userID,
		DisplayName:          constants.DefaultDisplayName,
		RateWindowDays:       constants.DefaultRateWindowDays,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		WeeklyCaptureWeekday: constants.DefaultWeeklyCaptureWeekday,
		WeeklyCaptureTime:    constants.DefaultWeeklyCaptureTime,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingUserID:
			settings.UserID = value
		case constants.SettingDisplayName:
			settings.DisplayName = value
		case constants.SettingRateWindowDays:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing rate_window_days: %w", err)
			}
			settings.RateWindowDays = n
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingWeeklyCaptureWeekday:
			settings.WeeklyCaptureWeekday = value
		case constants.SettingWeeklyCaptureTime:
			settings.WeeklyCaptureTime = value
		case constants.SettingLastStreakRefresh:
			settings.LastStreakRefresh = value
		case constants.SettingLastWeeklyCapture:
			settings.LastWeeklyCapture = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingUserID:               settings.UserID,
		constants.SettingDisplayName:          settings.DisplayName,
		constants.SettingRateWindowDays:       strconv.Itoa(settings.RateWindowDays),
		constants.SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingWeeklyCaptureWeekday: settings.WeeklyCaptureWeekday,
		constants.SettingWeeklyCaptureTime:    settings.WeeklyCaptureTime,
		constants.SettingLastStreakRefresh:    settings.LastStreakRefresh,
		constants.SettingLastWeeklyCapture:    settings.LastWeeklyCapture,
	}
}
