package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/stats"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/streak"
	"github.com/julianstephens/stride/internal/utils"
)

// GetStreak computes the habit's streak as of today. Longest never falls
// below the cached value.
func (s *Service) GetStreak(ctx context.Context, habitID string) (models.Streak, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return models.Streak{}, err
	}
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return models.Streak{}, err
	}
	return computeStreak(ctx, s.store, h, today)
}

// Milestones returns the milestone progress for the habit's current streak.
func (s *Service) Milestones(ctx context.Context, habitID string) (streak.Milestones, error) {
	st, err := s.GetStreak(ctx, habitID)
	if err != nil {
		return streak.Milestones{}, err
	}
	return streak.MilestonesFor(st.Current), nil
}

// GetCompletionRate is the percentage of completed logs among the habit's
// logs in the trailing window. A non-positive window uses the configured default.
func (s *Service) GetCompletionRate(ctx context.Context, habitID string, windowDays int) (int, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return 0, err
	}
	if windowDays <= 0 {
		windowDays = settings.RateWindowDays
	}
	if windowDays <= 0 {
		windowDays = constants.DefaultRateWindow
	}
	if windowDays > constants.StreakLookbackDays {
		return 0, apperrors.Invalid("window_days", "window must be at most %d days", constants.StreakLookbackDays)
	}
	today, err := utils.GetTodayInTimezone(s.clock, settings.Timezone)
	if err != nil {
		return 0, err
	}
	if _, err := s.store.GetHabit(ctx, habitID); err != nil {
		return 0, err
	}
	from, to := stats.Window(today, windowDays)
	logs, err := s.store.ListHabitLogs(ctx, habitID, from, to)
	if err != nil {
		return 0, err
	}
	return stats.CompletionRate(logs, today, windowDays), nil
}

// StreakRefresh reports a daily refresh run.
type StreakRefresh struct {
	Day     string   `json:"day"`
	Habits  int      `json:"habits"`
	Broken  int      `json:"broken"`
	Revoked []string `json:"revoked_users,omitempty"`
}

// RefreshStreaks recomputes every cached streak as of today. Streaks broken
// by a missed day lose their users' streak badges.
func (s *Service) RefreshStreaks(ctx context.Context) (StreakRefresh, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return StreakRefresh{}, err
	}
	result := StreakRefresh{Day: today}
	brokenUsers := map[string]bool{}

	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		habits, err := tx.ListHabits(ctx, "")
		if err != nil {
			return err
		}
		for _, h := range habits {
			change, err := s.recomputeStreak(ctx, tx, h, today)
			if err != nil {
				return err
			}
			result.Habits++
			if streak.Broken(change.before, change.after) {
				result.Broken++
				brokenUsers[h.UserID] = true
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	for userID := range brokenUsers {
		revoked, err := s.RevokeStreakBadges(ctx, userID)
		if err != nil {
			logger.Warn("Failed to revoke streak badges", "user", userID, "error", err)
			continue
		}
		if len(revoked) > 0 {
			result.Revoked = append(result.Revoked, userID)
		}
	}

	settings, err := s.settings(ctx)
	if err == nil {
		settings.LastStreakRefresh = today
		err = s.store.SaveSettings(ctx, settings)
	}
	if err != nil {
		logger.Warn("Failed to record streak refresh", "error", err)
	}
	return result, nil
}

// ShieldResult is the outcome of a shield request. A shield on cooldown is
// reported with Allowed false rather than as an error.
type ShieldResult struct {
	Allowed       bool                 `json:"allowed"`
	Shield        *models.StreakShield `json:"shield,omitempty"`
	ExpiresAt     *time.Time           `json:"expires_at,omitempty"`
	NextAvailable time.Time            `json:"next_available"`
}

// UseShield protects today for the user's streaks (one habit, or all when
// habitID is empty). One shield per user per rolling seven days.
func (s *Service) UseShield(ctx context.Context, userID, habitID string) (ShieldResult, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return ShieldResult{}, err
	}
	now := s.Now()

	var result ShieldResult
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		if habitID != "" {
			h, err := tx.GetHabit(ctx, habitID)
			if err != nil {
				return err
			}
			if h.UserID != userID {
				return apperrors.NotFound("habit", habitID)
			}
		}

		last, err := tx.LatestShield(ctx, userID)
		switch {
		case err == nil:
			next := last.UsedAt.Add(constants.ShieldCooldownDays * 24 * time.Hour)
			if now.Before(next) {
				result = ShieldResult{Allowed: false, NextAvailable: next}
				return nil
			}
		case !apperrors.IsNotFound(err):
			return err
		}

		shield := models.StreakShield{
			ID:        newID(),
			UserID:    userID,
			HabitID:   habitID,
			Day:       today,
			UsedAt:    now,
			ExpiresAt: now.Add(constants.ShieldValidHours * time.Hour),
		}
		if err := tx.AddShield(ctx, shield); err != nil {
			return err
		}
		result = ShieldResult{
			Allowed:       true,
			Shield:        &shield,
			ExpiresAt:     &shield.ExpiresAt,
			NextAvailable: now.Add(constants.ShieldCooldownDays * 24 * time.Hour),
		}
		return nil
	})
	if err != nil {
		return ShieldResult{}, err
	}
	if result.Allowed {
		s.publish(ctx, userID, constants.ActivityShieldUsed, fmt.Sprintf("used a streak shield for %s", today))
	}
	return result, nil
}

// ShieldStatus reports whether a shield can be used now and the active one, if any.
func (s *Service) ShieldStatus(ctx context.Context, userID string) (ShieldResult, error) {
	now := s.Now()
	last, err := s.store.LatestShield(ctx, userID)
	if apperrors.IsNotFound(err) {
		return ShieldResult{Allowed: true, NextAvailable: now}, nil
	}
	if err != nil {
		return ShieldResult{}, err
	}
	next := last.UsedAt.Add(constants.ShieldCooldownDays * 24 * time.Hour)
	result := ShieldResult{Allowed: !now.Before(next), NextAvailable: next}
	if now.Before(last.ExpiresAt) {
		result.Shield = &last
		result.ExpiresAt = &last.ExpiresAt
	}
	if result.Allowed {
		result.NextAvailable = now
	}
	return result, nil
}
