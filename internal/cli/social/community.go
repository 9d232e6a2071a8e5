package social

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/community"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/validation"
)

type CommunityCmd struct {
	Create      CommunityCreateCmd      `cmd:"" help:"Create a community and become its admin."`
	Join        CommunityJoinCmd        `cmd:"" help:"Join a community with an invite code."`
	Leave       CommunityLeaveCmd       `cmd:"" help:"Leave a community."`
	List        CommunityListCmd        `cmd:"" help:"List your communities." default:"1"`
	Members     CommunityMembersCmd     `cmd:"" help:"List a community's members."`
	RegenCode   CommunityRegenCodeCmd   `cmd:"" name:"regen-code" help:"Replace the invite code (admins only)."`
	Leaderboard CommunityLeaderboardCmd `cmd:"" help:"Rank members by streak, completion or activity."`
	Feed        CommunityFeedCmd        `cmd:"" help:"Show the community activity feed."`
	Cheer       CommunityCheerCmd       `cmd:"" help:"Cheer another member on."`
	Nudge       CommunityNudgeCmd       `cmd:"" help:"Remind another member to log today (once a day)."`
	React       CommunityReactCmd       `cmd:"" help:"Toggle an emoji reaction on a feed entry."`
	Inbox       CommunityInboxCmd       `cmd:"" help:"Show cheers, nudges and reactions you received."`
	Read        CommunityReadCmd        `cmd:"" help:"Mark received encouragements as read."`
}

// displayName is the configured name shown to other members.
func displayName(ctx *cli.Context) (string, string, error) {
	settings, err := ctx.Tracker.Settings(context.Background())
	if err != nil {
		return "", "", err
	}
	return settings.UserID, settings.DisplayName, nil
}

type CommunityCreateCmd struct {
	Name        string `arg:"" help:"Community name."`
	Description string `help:"Description."`
	GoalType    string `help:"Restrict to members with this goal type." enum:",weight-loss,reading" default:""`
	MaxMembers  int    `help:"Member limit (defaults to 10)."`
}

func (c *CommunityCreateCmd) Run(ctx *cli.Context) error {
	userID, name, err := displayName(ctx)
	if err != nil {
		return err
	}
	created, err := ctx.Community.Create(context.Background(), userID, name, validation.CommunityRequest{
		Name:        c.Name,
		Description: c.Description,
		GoalType:    constants.GoalType(c.GoalType),
		MaxMembers:  c.MaxMembers,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Created community %s (%s)\n", created.Name, cli.ShortID(created.ID))
	ctx.Printf("  Invite code: %s\n", created.InviteCode)
	return nil
}

type CommunityJoinCmd struct {
	Code string `arg:"" help:"Invite code."`
}

func (c *CommunityJoinCmd) Run(ctx *cli.Context) error {
	userID, name, err := displayName(ctx)
	if err != nil {
		return err
	}
	joined, err := ctx.Community.Join(context.Background(), userID, name, c.Code)
	if err != nil {
		return err
	}
	ctx.Printf("Joined %s\n", joined.Name)
	return nil
}

type CommunityLeaveCmd struct {
	ID string `arg:"" help:"Community id or prefix."`
}

func (c *CommunityLeaveCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Community.Leave(context.Background(), userID, id); err != nil {
		return err
	}
	ctx.Println("Left community.")
	return nil
}

type CommunityListCmd struct{}

func (c *CommunityListCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	list, err := ctx.Community.List(context.Background(), userID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Println("You are not in any community. Create one or join with an invite code.")
		return nil
	}
	for _, cm := range list {
		goalType := string(cm.GoalType)
		if goalType == "" {
			goalType = "any"
		}
		ctx.Printf("%s  %-24s goal %-12s code %s\n", cli.ShortID(cm.ID), cm.Name, goalType, cm.InviteCode)
	}
	return nil
}

type CommunityMembersCmd struct {
	ID string `arg:"" help:"Community id or prefix."`
}

func (c *CommunityMembersCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	members, err := ctx.Community.Members(context.Background(), userID, id)
	if err != nil {
		return err
	}
	for _, m := range members {
		ctx.Printf("  %-20s %-7s joined %s\n", m.DisplayName, m.Role, m.JoinedAt.Local().Format("2006-01-02"))
	}
	return nil
}

type CommunityRegenCodeCmd struct {
	ID string `arg:"" help:"Community id or prefix."`
}

func (c *CommunityRegenCodeCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	code, err := ctx.Community.RegenerateInviteCode(context.Background(), userID, id)
	if err != nil {
		return err
	}
	ctx.Printf("New invite code: %s\n", code)
	return nil
}

type CommunityLeaderboardCmd struct {
	ID   string `arg:"" help:"Community id or prefix."`
	Kind string `help:"Ranking (streak, completion, activity)." enum:"streak,completion,activity" default:"streak"`
}

func (c *CommunityLeaderboardCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	entries, err := ctx.Community.Leaderboard(context.Background(), userID, id, constants.LeaderboardKind(c.Kind))
	if err != nil {
		return err
	}
	for _, e := range entries {
		marker := " "
		if e.UserID == userID {
			marker = "*"
		}
		ctx.Printf("%s%3d. %-20s %g\n", marker, e.Rank, e.DisplayName, e.Score)
	}
	return nil
}

type CommunityFeedCmd struct {
	ID    string `arg:"" help:"Community id or prefix."`
	Limit int    `help:"Number of entries." default:"20"`
}

func (c *CommunityFeedCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	entries, err := ctx.Community.Feed(context.Background(), userID, id, c.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Println("No activity yet.")
		return nil
	}
	for _, e := range entries {
		ctx.Printf("%s  %s  %s %s%s\n", cli.ShortID(e.ID), e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.DisplayName, e.Message, reactionSummary(e.Reactions))
	}
	return nil
}

func reactionSummary(reactions []community.Reaction) string {
	if len(reactions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(reactions))
	for _, r := range reactions {
		parts = append(parts, fmt.Sprintf("%s %d", r.Emoji, r.Count))
	}
	return "  [" + strings.Join(parts, " ") + "]"
}

func resolve(ctx *cli.Context, ref string) (string, string, error) {
	userID, err := ctx.User()
	if err != nil {
		return "", "", err
	}
	cm, err := ctx.FindCommunity(ref)
	if err != nil {
		return "", "", err
	}
	return userID, cm.ID, nil
}
