package tracker

import (
	"context"
	"fmt"

	"github.com/julianstephens/stride/internal/achievement"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/stats"
)

// SyncCatalog inserts catalog entries missing from the store. It reports how
// many were inserted and the catalog size.
func (s *Service) SyncCatalog(ctx context.Context) (int, int, error) {
	inserted, err := s.store.InsertMissingAchievements(ctx, s.catalog.All())
	if err != nil {
		return inserted, s.catalog.Len(), err
	}
	s.catalogSynced.Store(true)
	if inserted > 0 {
		logger.Info("Synced achievement catalog", "inserted", inserted, "total", s.catalog.Len())
	}
	return inserted, s.catalog.Len(), nil
}

// CatalogNeedsSync reports whether the store lacks catalog entries.
func (s *Service) CatalogNeedsSync(ctx context.Context) (bool, error) {
	stored, err := s.store.ListAchievements(ctx)
	if err != nil {
		return false, err
	}
	have := make(map[string]bool, len(stored))
	for _, a := range stored {
		have[a.ID] = true
	}
	for _, a := range s.catalog.All() {
		if !have[a.ID] {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) ensureCatalog(ctx context.Context) error {
	if s.catalogSynced.Load() {
		return nil
	}
	_, _, err := s.SyncCatalog(ctx)
	return err
}

func (s *Service) unlockedSet(ctx context.Context, userID string) (map[string]bool, error) {
	uas, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(uas))
	for _, ua := range uas {
		set[ua.AchievementID] = true
	}
	return set, nil
}

// CheckAndUnlockAchievements unlocks every achievement of the trigger's
// category whose requirement is at most value. Already-unlocked entries are
// skipped silently; the result lists only new unlocks.
func (s *Service) CheckAndUnlockAchievements(ctx context.Context, userID string, trigger achievement.Trigger, value int) ([]string, error) {
	category, err := achievement.CategoryFor(trigger)
	if err != nil {
		return nil, err
	}
	if category == constants.CategoryConsistency {
		return s.unlockConsistency(ctx, userID)
	}
	return s.unlock(ctx, userID, category, value, "")
}

// RecheckAchievements evaluates the trigger against the user's stored data
// instead of a caller-supplied counter. Streak badges are checked per habit
// with that habit's template.
func (s *Service) RecheckAchievements(ctx context.Context, userID string, trigger achievement.Trigger) ([]string, error) {
	category, err := achievement.CategoryFor(trigger)
	if err != nil {
		return nil, err
	}
	var value int
	switch trigger {
	case achievement.TriggerSessions:
		return s.unlockConsistency(ctx, userID)
	case achievement.TriggerStreak:
		return s.recheckStreaks(ctx, userID)
	case achievement.TriggerGoalCompleted:
		value, err = s.completedGoals(ctx, userID)
	case achievement.TriggerCommunityJoined, achievement.TriggerCommunityCreated:
		var communities []models.Community
		communities, err = s.store.ListUserCommunities(ctx, userID)
		value = len(communities)
	case achievement.TriggerCheerSent:
		value, err = s.store.CountEncouragementsSent(ctx, userID, constants.EncouragementCheer)
	}
	if err != nil {
		return nil, err
	}
	return s.unlock(ctx, userID, category, value, "")
}

func (s *Service) recheckStreaks(ctx context.Context, userID string) ([]string, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return nil, err
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	var granted []string
	for _, h := range habits {
		st, err := computeStreak(ctx, s.store, h, today)
		if err != nil {
			return granted, err
		}
		ids, err := s.unlock(ctx, userID, constants.CategoryStreak, st.Current, h.TemplateID)
		granted = append(granted, ids...)
		if err != nil {
			return granted, err
		}
	}
	return granted, nil
}

func (s *Service) unlock(ctx context.Context, userID string, category constants.AchievementCategory, value int, template string) ([]string, error) {
	if err := s.ensureCatalog(ctx); err != nil {
		return nil, err
	}
	unlocked, err := s.unlockedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.grant(ctx, userID, category, achievement.Earned(s.catalog.All(), category, value, template, unlocked))
}

// unlockConsistency evaluates session-count achievements. Each entry counts
// the user's completed logs for its own templates.
func (s *Service) unlockConsistency(ctx context.Context, userID string) ([]string, error) {
	if err := s.ensureCatalog(ctx); err != nil {
		return nil, err
	}
	unlocked, err := s.unlockedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	var earned []string
	for _, a := range s.catalog.All() {
		if a.Category != constants.CategoryConsistency || unlocked[a.ID] {
			continue
		}
		n, err := s.store.CountCompletedLogs(ctx, userID, a.Templates)
		if err != nil {
			return nil, err
		}
		if n >= a.Requirement {
			earned = append(earned, a.ID)
		}
	}
	return s.grant(ctx, userID, constants.CategoryConsistency, earned)
}

func (s *Service) grant(ctx context.Context, userID string, category constants.AchievementCategory, ids []string) ([]string, error) {
	var granted []string
	for _, id := range ids {
		ok, err := s.store.UnlockAchievement(ctx, models.UserAchievement{
			UserID:        userID,
			AchievementID: id,
			UnlockedAt:    s.Now(),
		})
		if err != nil {
			return granted, err
		}
		if ok {
			granted = append(granted, id)
		}
	}
	observability.RecordUnlocked(string(category), len(granted))
	if len(granted) > 0 {
		logger.Info("Unlocked achievements", "user", userID, "category", category, "ids", granted)
	}
	return granted, nil
}

// RevokeStreakBadges removes every streak-type unlock of the user. Goal and
// social unlocks are permanent. Nothing to revoke is not an error.
func (s *Service) RevokeStreakBadges(ctx context.Context, userID string) ([]string, error) {
	uas, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(uas))
	for _, ua := range uas {
		ids = append(ids, ua.AchievementID)
	}
	revocable := achievement.Revocable(s.catalog.All(), ids)
	if len(revocable) == 0 {
		return nil, nil
	}
	n, err := s.store.DeleteUserAchievements(ctx, userID, revocable)
	if err != nil {
		return nil, fmt.Errorf("revoking streak badges: %w", err)
	}
	observability.RecordRevoked(n)
	logger.Info("Revoked streak badges", "user", userID, "count", n)
	return revocable, nil
}

// ListAchievementsWithStatus returns the catalog joined with the user's unlocks.
func (s *Service) ListAchievementsWithStatus(ctx context.Context, userID string) ([]models.AchievementStatus, error) {
	uas, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	at := make(map[string]models.UserAchievement, len(uas))
	for _, ua := range uas {
		at[ua.AchievementID] = ua
	}

	entries := s.catalog.All()
	out := make([]models.AchievementStatus, 0, len(entries))
	for _, a := range entries {
		st := models.AchievementStatus{Achievement: a}
		if ua, ok := at[a.ID]; ok {
			st.Unlocked = true
			t := ua.UnlockedAt
			st.UnlockedAt = &t
		}
		out = append(out, st)
	}
	return out, nil
}

type AchievementStats struct {
	Unlocked int                      `json:"unlocked"`
	Total    int                      `json:"total"`
	Percent  int                      `json:"percent"`
	ByRarity map[constants.Rarity]int `json:"by_rarity"`
}

// AchievementStats summarizes the user's unlocks by rarity.
func (s *Service) AchievementStats(ctx context.Context, userID string) (AchievementStats, error) {
	statuses, err := s.ListAchievementsWithStatus(ctx, userID)
	if err != nil {
		return AchievementStats{}, err
	}
	out := AchievementStats{Total: len(statuses), ByRarity: map[constants.Rarity]int{}}
	for _, st := range statuses {
		if st.Unlocked {
			out.Unlocked++
			out.ByRarity[st.Rarity]++
		}
	}
	out.Percent = stats.Percent(out.Unlocked, out.Total)
	return out, nil
}
