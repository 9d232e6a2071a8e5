package tracker

import (
	"context"
	"fmt"
	"testing"

	"github.com/julianstephens/stride/internal/achievement"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

func TestCheckAndUnlockIsIdempotent(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()

	first, err := svc.CheckAndUnlockAchievements(ctx, user, achievement.TriggerCommunityJoined, 3)
	if err != nil {
		t.Fatalf("CheckAndUnlockAchievements failed: %v", err)
	}
	got := map[string]bool{}
	for _, id := range first {
		got[id] = true
	}
	if len(first) != 2 || !got["team_player"] || !got["connector"] {
		t.Errorf("unlocked %v, want team_player and connector", first)
	}

	again, err := svc.CheckAndUnlockAchievements(ctx, user, achievement.TriggerCommunityJoined, 3)
	if err != nil {
		t.Fatalf("CheckAndUnlockAchievements failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("re-unlock returned %v", again)
	}

	if _, err := svc.CheckAndUnlockAchievements(ctx, user, achievement.Trigger("bogus"), 1); err == nil {
		t.Error("expected error for unknown trigger")
	}

	// Social badges are not streak badges.
	revoked, err := svc.RevokeStreakBadges(ctx, user)
	if err != nil {
		t.Fatalf("RevokeStreakBadges failed: %v", err)
	}
	if len(revoked) != 0 {
		t.Errorf("revoked %v", revoked)
	}
}

func TestRecheckAchievementsUsesStoredData(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()
	store := svc.Store()

	recheck := func(trigger achievement.Trigger) []string {
		t.Helper()
		ids, err := svc.RecheckAchievements(ctx, user, trigger)
		if err != nil {
			t.Fatalf("RecheckAchievements(%s) failed: %v", trigger, err)
		}
		return ids
	}

	for _, trigger := range []achievement.Trigger{
		achievement.TriggerCommunityJoined, achievement.TriggerCheerSent,
		achievement.TriggerGoalCompleted, achievement.TriggerStreak,
	} {
		if ids := recheck(trigger); len(ids) != 0 {
			t.Errorf("%s with no data unlocked %v", trigger, ids)
		}
	}

	c := models.Community{ID: "c1", Name: "Readers", InviteCode: "ABC123", CreatedBy: user, MaxMembers: 10, CreatedAt: start}
	if err := store.AddCommunity(ctx, c); err != nil {
		t.Fatalf("AddCommunity failed: %v", err)
	}
	if err := store.AddMember(ctx, models.CommunityMember{CommunityID: "c1", UserID: user, Role: constants.CommunityRoleAdmin, JoinedAt: start}); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if ids := recheck(achievement.TriggerCommunityCreated); len(ids) != 1 || ids[0] != "team_player" {
		t.Errorf("one membership unlocked %v, want team_player", ids)
	}

	for i := 0; i < 3; i++ {
		err := store.AddEncouragement(ctx, models.Encouragement{
			ID: fmt.Sprintf("e%d", i), Type: constants.EncouragementCheer, FromUserID: user, ToUserID: "friend",
			CommunityID: "c1", Day: "2024-06-05", CreatedAt: start,
		})
		if err != nil {
			t.Fatalf("AddEncouragement failed: %v", err)
		}
	}
	if ids := recheck(achievement.TriggerCheerSent); len(ids) != 1 || ids[0] != "connector" {
		t.Errorf("three cheers unlocked %v, want connector", ids)
	}

	_, habits := readingGoal(t, svc, user, validationHabit("Read", constants.TemplateCustom))
	logDone(t, svc, habits[0].ID, true)
	if _, err := svc.RevokeStreakBadges(ctx, user); err != nil {
		t.Fatalf("RevokeStreakBadges failed: %v", err)
	}
	if userAchievementIDs(t, svc, user)["first_fast"] {
		t.Fatal("first_fast should be revoked")
	}
	ids := recheck(achievement.TriggerStreak)
	if len(ids) != 1 || ids[0] != "first_fast" {
		t.Errorf("a one-day streak unlocked %v, want first_fast", ids)
	}

	if _, err := svc.RecheckAchievements(ctx, user, achievement.Trigger("bogus")); err == nil {
		t.Error("expected error for unknown trigger")
	}
}

func TestStreakTriggerWithoutTemplate(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()

	ids, err := svc.CheckAndUnlockAchievements(ctx, user, achievement.TriggerStreak, 7)
	if err != nil {
		t.Fatalf("CheckAndUnlockAchievements failed: %v", err)
	}
	got := map[string]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if !got["streak_7"] || !got["first_fast"] {
		t.Errorf("expected generic streak badges, got %v", ids)
	}
	if !got["gym_rat"] {
		t.Error("without a habit template every streak entry is eligible")
	}
}

func TestAchievementStats(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()

	if _, err := svc.CheckAndUnlockAchievements(ctx, user, achievement.TriggerGoalCompleted, 1); err != nil {
		t.Fatalf("CheckAndUnlockAchievements failed: %v", err)
	}
	stats, err := svc.AchievementStats(ctx, user)
	if err != nil {
		t.Fatalf("AchievementStats failed: %v", err)
	}
	if stats.Unlocked != 1 || stats.Total != svc.Catalog().Len() {
		t.Errorf("unexpected stats %+v", stats)
	}
	entry, ok := svc.Catalog().Get("goal_first")
	if !ok {
		t.Fatal("goal_first missing from catalog")
	}
	if stats.ByRarity[entry.Rarity] != 1 {
		t.Errorf("by rarity = %v", stats.ByRarity)
	}

	statuses, err := svc.ListAchievementsWithStatus(ctx, user)
	if err != nil {
		t.Fatalf("ListAchievementsWithStatus failed: %v", err)
	}
	for _, st := range statuses {
		if st.Unlocked != (st.ID == "goal_first") {
			t.Errorf("%s unlocked = %v", st.ID, st.Unlocked)
		}
		if st.Unlocked && st.UnlockedAt == nil {
			t.Errorf("%s missing unlock time", st.ID)
		}
	}

	needs, err := svc.CatalogNeedsSync(ctx)
	if err != nil {
		t.Fatalf("CatalogNeedsSync failed: %v", err)
	}
	if needs {
		t.Error("catalog was synced by the first unlock")
	}
	inserted, total, err := svc.SyncCatalog(ctx)
	if err != nil || inserted != 0 || total != svc.Catalog().Len() {
		t.Errorf("SyncCatalog = %d, %d, %v", inserted, total, err)
	}
}
