package goals

import (
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/stride/internal/cli/clitest"
	apperrors "github.com/julianstephens/stride/internal/errors"
)

func addReadingGoal(t *testing.T, env *clitest.Env) string {
	t.Helper()
	cmd := &GoalAddCmd{
		Type: "reading", Title: "Read 12 books", Target: 12, Deadline: "2024-09-30",
		CustomHabit: []string{"Read 30 minutes"},
	}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("goal add failed: %v", err)
	}
	user, err := env.Ctx.User()
	if err != nil {
		t.Fatalf("User failed: %v", err)
	}
	goals, err := env.Ctx.Tracker.ListGoals(context.Background(), user)
	if err != nil || len(goals) != 1 {
		t.Fatalf("expected one goal, got %d (%v)", len(goals), err)
	}
	return goals[0].ID
}

func TestGoalAddAndShow(t *testing.T) {
	env := clitest.Initialized(t)
	id := addReadingGoal(t, env)

	out := env.Output()
	if !strings.Contains(out, "Created goal") || !strings.Contains(out, "(17 weeks)") || !strings.Contains(out, "Read 30 minutes") {
		t.Errorf("unexpected add output:\n%s", out)
	}

	if err := (&GoalShowCmd{ID: id[:8]}).Run(env.Ctx); err != nil {
		t.Fatalf("goal show failed: %v", err)
	}
	out = env.Output()
	if !strings.Contains(out, "Projection: not enough progress to project") {
		t.Errorf("missing projection:\n%s", out)
	}
	if !strings.Contains(out, "Week 0") {
		t.Errorf("expected baseline week, got:\n%s", out)
	}
}

func TestGoalAddRejectsShortGoals(t *testing.T) {
	env := clitest.Initialized(t)
	err := (&GoalAddCmd{Type: "reading", Title: "Sprint", Target: 2, Deadline: "2024-07-01"}).Run(env.Ctx)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "at least 12 weeks") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestGoalUpdateAndDelete(t *testing.T) {
	env := clitest.Initialized(t)
	id := addReadingGoal(t, env)
	env.Output()

	title := "Read 15 books"
	target := 15.0
	if err := (&GoalUpdateCmd{ID: id, Title: &title, Target: &target}).Run(env.Ctx); err != nil {
		t.Fatalf("goal update failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Read 15 books, target 15") {
		t.Errorf("unexpected update output %q", out)
	}

	if err := (&GoalDeleteCmd{ID: id}).Run(env.Ctx); err != nil {
		t.Fatalf("goal delete failed: %v", err)
	}
	if err := (&GoalShowCmd{ID: id}).Run(env.Ctx); !apperrors.IsNotFound(err) {
		t.Errorf("deleted goal should be not found, got %v", err)
	}
}

func TestProgressAndWeekCommands(t *testing.T) {
	env := clitest.Initialized(t)
	id := addReadingGoal(t, env)
	env.Output()

	if err := (&ProgressLogCmd{Goal: id, Value: 2}).Run(env.Ctx); err != nil {
		t.Fatalf("progress log failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Logged 2 books") {
		t.Errorf("unexpected progress output %q", out)
	}

	// The baseline week already has a snapshot, so logging is open.
	if err := (&WeekStatusCmd{Goal: id}).Run(env.Ctx); err != nil {
		t.Fatalf("week status failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Week 0: snapshot captured, logging open") {
		t.Errorf("unexpected status %q", out)
	}

	env.Clock.AdvanceDays(7)
	if err := (&WeekLogCmd{Goal: id, Value: 3}).Run(env.Ctx); !apperrors.IsConflict(err) {
		t.Fatalf("mid-week log should conflict, got %v", err)
	}

	if err := (&WeekCaptureCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("week capture failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Captured 1 weekly snapshot(s).") {
		t.Errorf("unexpected capture output %q", out)
	}

	if err := (&WeekTimelineCmd{Goal: id}).Run(env.Ctx); err != nil {
		t.Fatalf("week timeline failed: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "Week 0") || !strings.Contains(out, "Week 1") {
		t.Errorf("timeline should list both weeks:\n%s", out)
	}
}
