package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/validation"
)

// Settings returns the stored application settings.
func (s *Service) Settings(ctx context.Context) (models.Settings, error) {
	return s.settings(ctx)
}

// UpdateSettings applies the non-nil fields of req.
func (s *Service) UpdateSettings(ctx context.Context, req validation.SettingsRequest) (models.Settings, error) {
	if err := req.Validate(); err != nil {
		return models.Settings{}, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}
	if req.DisplayName != nil {
		settings.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.RateWindowDays != nil {
		settings.RateWindowDays = *req.RateWindowDays
	}
	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.WeeklyCaptureWeekday != nil {
		settings.WeeklyCaptureWeekday = strings.ToLower(*req.WeeklyCaptureWeekday)
	}
	if req.WeeklyCaptureTime != nil {
		settings.WeeklyCaptureTime = *req.WeeklyCaptureTime
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// RecordWeeklyCapture stores the weekly capture occurrence the scheduler last
// handled, so a restart does not repeat it or skip a missed one.
func (s *Service) RecordWeeklyCapture(ctx context.Context, at time.Time) error {
	settings, err := s.settings(ctx)
	if err != nil {
		return err
	}
	settings.LastWeeklyCapture = at.UTC().Format(time.RFC3339)
	return s.store.SaveSettings(ctx, settings)
}
