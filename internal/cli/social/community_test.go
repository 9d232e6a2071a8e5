package social

import (
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/stride/internal/cli/clitest"
	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/validation"
)

func addGoal(t *testing.T, env *clitest.Env) {
	t.Helper()
	user, err := env.Ctx.User()
	if err != nil {
		t.Fatalf("User failed: %v", err)
	}
	_, err = env.Ctx.Tracker.CreateGoal(context.Background(), user, validation.GoalRequest{
		Type: constants.GoalReading, Title: "Books", TargetValue: 10, Deadline: "2024-09-30",
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
}

func TestCommunityCreateRequiresGoal(t *testing.T) {
	env := clitest.Initialized(t)

	err := (&CommunityCreateCmd{Name: "Readers"}).Run(env.Ctx)
	if !apperrors.IsConflict(err) {
		t.Fatalf("expected conflict without a goal, got %v", err)
	}
}

func TestCommunityCommands(t *testing.T) {
	env := clitest.Initialized(t)
	addGoal(t, env)

	if err := (&CommunityCreateCmd{Name: "Readers", GoalType: "reading"}).Run(env.Ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "Created community Readers") || !strings.Contains(out, "Invite code:") {
		t.Errorf("unexpected create output:\n%s", out)
	}

	user, _ := env.Ctx.User()
	list, err := env.Ctx.Community.List(context.Background(), user)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one community, got %d (%v)", len(list), err)
	}
	cm := list[0]
	ref := cm.ID[:6]

	if err := (&CommunityListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "goal reading") || !strings.Contains(out, cm.InviteCode) {
		t.Errorf("unexpected list output %q", out)
	}

	if err := (&CommunityJoinCmd{Code: strings.ToLower(cm.InviteCode)}).Run(env.Ctx); !apperrors.IsConflict(err) {
		t.Errorf("joining twice should conflict, got %v", err)
	}

	if err := (&CommunityMembersCmd{ID: ref}).Run(env.Ctx); err != nil {
		t.Fatalf("members failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "me") || !strings.Contains(out, "admin") {
		t.Errorf("unexpected members output %q", out)
	}

	if err := (&CommunityLeaderboardCmd{ID: ref, Kind: "streak"}).Run(env.Ctx); err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "*  1. me") {
		t.Errorf("unexpected leaderboard %q", out)
	}

	if err := (&CommunityRegenCodeCmd{ID: ref}).Run(env.Ctx); err != nil {
		t.Fatalf("regen-code failed: %v", err)
	}
	out = env.Output()
	if !strings.HasPrefix(out, "New invite code: ") || strings.Contains(out, cm.InviteCode) {
		t.Errorf("expected a fresh code, got %q", out)
	}

	if err := (&CommunityFeedCmd{ID: ref, Limit: 5}).Run(env.Ctx); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	env.Output()

	if err := (&CommunityLeaveCmd{ID: ref}).Run(env.Ctx); err != nil {
		t.Fatalf("sole member should be able to leave: %v", err)
	}
	if err := (&CommunityListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "not in any community") {
		t.Errorf("expected empty list, got %q", out)
	}
}

func TestEncouragementCommands(t *testing.T) {
	env := clitest.Initialized(t)
	ctx := context.Background()
	addGoal(t, env)

	if err := (&CommunityCreateCmd{Name: "Readers"}).Run(env.Ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	env.Output()
	user, _ := env.Ctx.User()
	list, err := env.Ctx.Community.List(ctx, user)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one community, got %d (%v)", len(list), err)
	}
	cm := list[0]
	ref := cm.ID[:6]

	_, err = env.Ctx.Tracker.CreateGoal(ctx, "friend", validation.GoalRequest{
		Type: constants.GoalReading, Title: "Books", TargetValue: 10, Deadline: "2024-09-30",
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if _, err := env.Ctx.Community.Join(ctx, "friend", "Pat", cm.InviteCode); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if err := (&CommunityCheerCmd{ID: ref, Member: "pat"}).Run(env.Ctx); err != nil {
		t.Fatalf("cheer failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Cheered Pat: "+constants.DefaultCheerMessage) {
		t.Errorf("unexpected cheer output %q", out)
	}

	if err := (&CommunityNudgeCmd{ID: ref, Member: "friend"}).Run(env.Ctx); err != nil {
		t.Fatalf("nudge failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Nudged Pat") {
		t.Errorf("unexpected nudge output %q", out)
	}
	if err := (&CommunityNudgeCmd{ID: ref, Member: "Pat"}).Run(env.Ctx); !apperrors.IsConflict(err) {
		t.Errorf("second nudge today should conflict, got %v", err)
	}
	if err := (&CommunityNudgeCmd{ID: ref, Member: "nobody"}).Run(env.Ctx); !apperrors.IsNotFound(err) {
		t.Errorf("unknown member should be not found, got %v", err)
	}

	entries, err := env.Ctx.Community.Feed(ctx, user, cm.ID, 0)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	var joinEntry string
	for _, e := range entries {
		if e.Type == constants.ActivityMemberJoined {
			joinEntry = e.ID
		}
	}
	if joinEntry == "" {
		t.Fatalf("no join entry in %+v", entries)
	}

	if err := (&CommunityReactCmd{ID: ref, Entry: joinEntry[:8], Emoji: "👏"}).Run(env.Ctx); err != nil {
		t.Fatalf("react failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Reacted 👏") {
		t.Errorf("unexpected react output %q", out)
	}
	if err := (&CommunityFeedCmd{ID: ref, Limit: 10}).Run(env.Ctx); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "[👏 1]") || !strings.Contains(out, "cheered Pat") {
		t.Errorf("feed should show the reaction and the cheer, got:\n%s", out)
	}
	if err := (&CommunityReactCmd{ID: ref, Entry: joinEntry[:8], Emoji: "👏"}).Run(env.Ctx); err != nil {
		t.Fatalf("react failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Removed 👏") {
		t.Errorf("second react should remove, got %q", out)
	}

	if _, err := env.Ctx.Community.Cheer(ctx, "friend", cm.ID, validation.EncouragementRequest{ToUserID: user}); err != nil {
		t.Fatalf("Cheer failed: %v", err)
	}
	if err := (&CommunityInboxCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("inbox failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Pat: "+constants.DefaultCheerMessage) {
		t.Errorf("unexpected inbox %q", out)
	}
	if err := (&CommunityReadCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Marked 1 as read.") {
		t.Errorf("unexpected read output %q", out)
	}
	if err := (&CommunityInboxCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("inbox failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "No new encouragements.") {
		t.Errorf("inbox should be empty, got %q", out)
	}
	if err := (&CommunityInboxCmd{All: true}).Run(env.Ctx); err != nil {
		t.Fatalf("inbox --all failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Pat:") {
		t.Errorf("inbox --all should keep read entries, got %q", out)
	}
}
