package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/storage/sqlite"
	"github.com/julianstephens/stride/internal/utils"
	"github.com/julianstephens/stride/internal/validation"
)

// Wednesday
var start = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *utils.FakeClock, string) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	clock := utils.NewFakeClock(start)
	svc, err := New(store, WithClock(clock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc, clock, settings.UserID
}

func readingGoal(t *testing.T, svc *Service, userID string, habits ...validation.HabitRequest) (models.Goal, []models.Habit) {
	t.Helper()
	goal, hs, err := svc.CreateGoalWithHabits(context.Background(), userID, validation.GoalRequest{
		Type:        constants.GoalReading,
		Title:       "Read more",
		TargetValue: 12,
		Deadline:    "2024-09-30",
		Habits:      habits,
	})
	if err != nil {
		t.Fatalf("CreateGoalWithHabits failed: %v", err)
	}
	return goal, hs
}

func fastingGoal(t *testing.T, svc *Service, userID string) (models.Goal, map[string]models.Habit) {
	t.Helper()
	goal, hs, err := svc.CreateGoalWithHabits(context.Background(), userID, validation.GoalRequest{
		Type:        constants.GoalWeightLoss,
		Title:       "Lose weight",
		StartValue:  90,
		TargetValue: 80,
		Deadline:    "2024-10-01",
		Habits: []validation.HabitRequest{
			{Name: "OMAD", TemplateID: constants.TemplateOMAD},
			{Name: "Moran", TemplateID: constants.TemplateMoran},
			{Name: "Autophagy", TemplateID: constants.TemplateAutophagy},
			{Name: "Gym", TemplateID: "gym"},
		},
	})
	if err != nil {
		t.Fatalf("CreateGoalWithHabits failed: %v", err)
	}
	byTemplate := make(map[string]models.Habit, len(hs))
	for _, h := range hs {
		byTemplate[h.TemplateID] = h
	}
	return goal, byTemplate
}

func logDone(t *testing.T, svc *Service, habitID string, completed bool) models.HabitLog {
	t.Helper()
	ctx := context.Background()
	today, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	l, err := svc.LogHabitCompletion(ctx, habitID, today, completed, "")
	if err != nil {
		t.Fatalf("LogHabitCompletion failed: %v", err)
	}
	return l
}

func completedOn(t *testing.T, svc *Service, habitID, day string) bool {
	t.Helper()
	l, err := svc.Store().GetHabitLog(context.Background(), habitID, day)
	if apperrors.IsNotFound(err) {
		return false
	}
	if err != nil {
		t.Fatalf("GetHabitLog failed: %v", err)
	}
	return l.Completed
}

func validationHabit(name, template string) validation.HabitRequest {
	return validation.HabitRequest{Name: name, TemplateID: template}
}

func userAchievementIDs(t *testing.T, svc *Service, userID string) map[string]bool {
	t.Helper()
	uas, err := svc.Store().ListUserAchievements(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListUserAchievements failed: %v", err)
	}
	ids := make(map[string]bool, len(uas))
	for _, ua := range uas {
		ids[ua.AchievementID] = true
	}
	return ids
}

func metric(goalID string, value float64) validation.MetricRequest {
	return validation.MetricRequest{GoalID: goalID, Value: value}
}
