package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/projection"
	"github.com/julianstephens/stride/internal/validation"
)

func TestCreateGoalValidation(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     validation.GoalRequest
		field   string
		message string
	}{
		{
			name:  "eleven weeks",
			req:   validation.GoalRequest{Type: constants.GoalReading, Title: "Read", TargetValue: 5, Deadline: "2024-08-20"},
			field: "deadline",
		},
		{
			name:  "deadline before start",
			req:   validation.GoalRequest{Type: constants.GoalReading, Title: "Read", TargetValue: 5, Deadline: "2024-06-01"},
			field: "deadline",
		},
		{
			name:    "weight target above start",
			req:     validation.GoalRequest{Type: constants.GoalWeightLoss, Title: "Cut", StartValue: 80, TargetValue: 85, Deadline: "2024-10-01"},
			field:   "target_value",
			message: "Target weight must be less than current weight",
		},
		{
			name:  "reading target below books read",
			req:   validation.GoalRequest{Type: constants.GoalReading, Title: "Read", StartValue: 10, TargetValue: 8, Deadline: "2024-10-01"},
			field: "target_value",
		},
		{
			name: "unknown template",
			req: validation.GoalRequest{Type: constants.GoalReading, Title: "Read", TargetValue: 5, Deadline: "2024-10-01",
				Habits: []validation.HabitRequest{{Name: "Gym", TemplateID: "gym"}}},
			field: "template_id",
		},
		{
			name:  "missing deadline",
			req:   validation.GoalRequest{Type: constants.GoalReading, Title: "Read", TargetValue: 5},
			field: "deadline",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateGoalWithHabits(ctx, user, tt.req)
			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
			if tt.message != "" && ve.Message != tt.message {
				t.Errorf("message = %q, want %q", ve.Message, tt.message)
			}
		})
	}

	goals, err := svc.ListGoals(ctx, user)
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("rejected goals must not be stored, found %d", len(goals))
	}
}

func TestCreateGoalWritesBaseline(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()

	// Twelve weeks exactly.
	goal, _, err := svc.CreateGoalWithHabits(ctx, user, validation.GoalRequest{
		Type: constants.GoalWeightLoss, Title: "Cut", StartValue: 90, TargetValue: 82, Deadline: "2024-08-28",
		Habits: []validation.HabitRequest{{Name: "Gym", TemplateID: "gym"}, {Name: "Walk", TemplateID: "walking"}},
	})
	if err != nil {
		t.Fatalf("CreateGoalWithHabits failed: %v", err)
	}
	if goal.DurationWeeks != 12 || goal.StartDate != "2024-06-05" || goal.Unit != "kg" || goal.CurrentValue != 90 {
		t.Errorf("unexpected goal %+v", goal)
	}

	timeline, err := svc.ProgressTimeline(ctx, goal.ID)
	if err != nil {
		t.Fatalf("ProgressTimeline failed: %v", err)
	}
	if len(timeline) != 1 {
		t.Fatalf("expected baseline only, got %d snapshots", len(timeline))
	}
	base := timeline[0]
	if base.WeekNumber != 0 || base.WeekStart != "2024-06-02" || base.WeekEnd != "2024-06-08" {
		t.Errorf("unexpected baseline window %+v", base)
	}
	if base.WeightValue == nil || *base.WeightValue != 90 || base.TotalHabitsAvailable != 14 {
		t.Errorf("unexpected baseline values %+v", base)
	}
	if base.ProgressDelta != nil {
		t.Error("baseline must not carry a delta")
	}

	habits, err := svc.ListHabits(ctx, user, goal.ID)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	for _, h := range habits {
		if h.Frequency != constants.FrequencyDaily || h.Color == "" {
			t.Errorf("template defaults not applied to %+v", h)
		}
	}
}

func TestUpdateGoal(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()
	goal, _ := fastingGoal(t, svc, user)

	target := 95.0
	_, err := svc.UpdateGoal(ctx, goal.ID, validation.GoalUpdateRequest{TargetValue: &target})
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	short := "2024-07-01"
	if _, err := svc.UpdateGoal(ctx, goal.ID, validation.GoalUpdateRequest{Deadline: &short}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for short deadline, got %v", err)
	}

	title, deadline := "Summer cut", "2024-12-31"
	updated, err := svc.UpdateGoal(ctx, goal.ID, validation.GoalUpdateRequest{Title: &title, Deadline: &deadline})
	if err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if updated.Title != title || updated.Deadline != deadline || updated.DurationWeeks != 30 {
		t.Errorf("unexpected update %+v", updated)
	}
}

func TestDeleteGoalCascades(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()
	goal, habits := readingGoal(t, svc, user, validationHabit("Read", "daily-reading"))
	logDone(t, svc, habits[0].ID, true)

	if err := svc.DeleteGoal(ctx, goal.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	if _, err := svc.GetHabit(ctx, habits[0].ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected habit to be deleted, got %v", err)
	}
	if _, err := svc.ProgressTimeline(ctx, goal.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected goal to be gone, got %v", err)
	}
}

func TestLogProgressAndProjection(t *testing.T) {
	svc, clock, user := setupService(t)
	ctx := context.Background()
	goal, _ := readingGoal(t, svc, user)

	p, err := svc.ProjectCompletion(ctx, goal.ID)
	if err != nil {
		t.Fatalf("ProjectCompletion failed: %v", err)
	}
	if p.Status != projection.StatusUnknown {
		t.Errorf("no progress should not project, got %+v", p)
	}

	clock.AdvanceDays(8)
	_, updated, err := svc.LogProgress(ctx, validation.MetricRequest{GoalID: goal.ID, Value: 4})
	if err != nil {
		t.Fatalf("LogProgress failed: %v", err)
	}
	if updated.CurrentValue != 4 {
		t.Errorf("current value = %v, want 4", updated.CurrentValue)
	}

	p, err = svc.ProjectCompletion(ctx, goal.ID)
	if err != nil {
		t.Fatalf("ProjectCompletion failed: %v", err)
	}
	if p.Status != projection.StatusProjected || p.DaysRemaining != 16 {
		t.Errorf("unexpected projection %+v", p)
	}

	if userAchievementIDs(t, svc, user)["goal_first"] {
		t.Fatal("goal_first unlocked before the goal was reached")
	}
	if _, _, err := svc.LogProgress(ctx, validation.MetricRequest{GoalID: goal.ID, Value: 12}); err != nil {
		t.Fatalf("LogProgress failed: %v", err)
	}
	if !userAchievementIDs(t, svc, user)["goal_first"] {
		t.Error("expected goal_first after completing the goal")
	}
	p, err = svc.ProjectCompletion(ctx, goal.ID)
	if err != nil {
		t.Fatalf("ProjectCompletion failed: %v", err)
	}
	if p.String() != projection.CompletedLabel {
		t.Errorf("projection = %q, want %q", p.String(), projection.CompletedLabel)
	}
}

func TestDayView(t *testing.T) {
	svc, _, user := setupService(t)
	ctx := context.Background()
	_, habits := fastingGoal(t, svc, user)
	logDone(t, svc, habits[constants.TemplateOMAD].ID, true)

	view, err := svc.Day(ctx, user, "")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if view.ReadOnly || view.Day != "2024-06-05" {
		t.Errorf("unexpected view header %+v", view)
	}
	if len(view.Groups) != 1 {
		t.Fatalf("expected one group, got %d", len(view.Groups))
	}
	g := view.Groups[0]
	if g.Completed != 1 || g.MaxAchievable != 3 || g.Percent != 33 {
		t.Errorf("group = %d/%d (%d%%), want 1/3 (33%%)", g.Completed, g.MaxAchievable, g.Percent)
	}

	past, err := svc.Day(ctx, user, "2024-06-04")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if !past.ReadOnly {
		t.Error("past days must be read-only")
	}
}
