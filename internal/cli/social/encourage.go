package social

import (
	"context"
	"strings"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/validation"
)

// member finds a community member by user id or display name.
func member(ctx *cli.Context, userID, communityID, ref string) (models.CommunityMember, error) {
	members, err := ctx.Community.Members(context.Background(), userID, communityID)
	if err != nil {
		return models.CommunityMember{}, err
	}
	var byName []models.CommunityMember
	for _, m := range members {
		if m.UserID == ref {
			return m, nil
		}
		if strings.EqualFold(m.DisplayName, ref) {
			byName = append(byName, m)
		}
	}
	switch len(byName) {
	case 0:
		return models.CommunityMember{}, apperrors.NotFound("community member", ref)
	case 1:
		return byName[0], nil
	}
	return models.CommunityMember{}, apperrors.Conflict("%d members are named %q, use their user id", len(byName), ref)
}

type CommunityCheerCmd struct {
	ID      string `arg:"" help:"Community id or prefix."`
	Member  string `arg:"" help:"Member user id or display name."`
	Message string `help:"Message (a default cheer is sent when empty)." short:"m"`
}

func (c *CommunityCheerCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	to, err := member(ctx, userID, id, c.Member)
	if err != nil {
		return err
	}
	sent, err := ctx.Community.Cheer(context.Background(), userID, id, validation.EncouragementRequest{ToUserID: to.UserID, Message: c.Message})
	if err != nil {
		return err
	}
	ctx.Printf("🎉 Cheered %s: %s\n", to.DisplayName, sent.Message)
	return nil
}

type CommunityNudgeCmd struct {
	ID      string `arg:"" help:"Community id or prefix."`
	Member  string `arg:"" help:"Member user id or display name."`
	Message string `help:"Message (a default reminder is sent when empty)." short:"m"`
}

func (c *CommunityNudgeCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	to, err := member(ctx, userID, id, c.Member)
	if err != nil {
		return err
	}
	if _, err := ctx.Community.Nudge(context.Background(), userID, id, validation.EncouragementRequest{ToUserID: to.UserID, Message: c.Message}); err != nil {
		return err
	}
	ctx.Printf("👉 Nudged %s\n", to.DisplayName)
	return nil
}

type CommunityReactCmd struct {
	ID    string `arg:"" help:"Community id or prefix."`
	Entry string `arg:"" help:"Feed entry id or prefix, as shown by the feed command."`
	Emoji string `arg:"" help:"Emoji to add, or remove if already there."`
}

func (c *CommunityReactCmd) Run(ctx *cli.Context) error {
	userID, id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	entries, err := ctx.Community.Feed(context.Background(), userID, id, constants.DefaultFeedLimit)
	if err != nil {
		return err
	}
	var match []string
	for _, e := range entries {
		if strings.HasPrefix(e.ID, c.Entry) {
			match = append(match, e.ID)
		}
	}
	switch {
	case c.Entry == "" || len(match) == 0:
		return apperrors.NotFound("feed entry", c.Entry)
	case len(match) > 1:
		return apperrors.Conflict("%q matches %d feed entries, use a longer prefix", c.Entry, len(match))
	}

	res, err := ctx.Community.React(context.Background(), userID, match[0], validation.ReactionRequest{Emoji: c.Emoji})
	if err != nil {
		return err
	}
	if res.Added {
		ctx.Printf("Reacted %s\n", res.Emoji)
	} else {
		ctx.Printf("Removed %s\n", res.Emoji)
	}
	return nil
}

type CommunityInboxCmd struct {
	All  bool `help:"Include encouragements already read."`
	JSON bool `help:"Output JSON." name:"json"`
}

func (c *CommunityInboxCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	entries, err := ctx.Community.Inbox(context.Background(), userID, !c.All)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(entries)
	}
	if len(entries) == 0 {
		ctx.Println("No new encouragements.")
		return nil
	}
	for _, e := range entries {
		mark := "•"
		if e.Read {
			mark = " "
		}
		text := e.Message
		if e.Type == constants.EncouragementReaction {
			text = "reacted " + e.Emoji
		}
		ctx.Printf("%s %s  %-6s %s: %s\n", mark, cli.ShortID(e.ID), e.Type, e.FromDisplayName, text)
	}
	return nil
}

type CommunityReadCmd struct {
	IDs []string `arg:"" optional:"" help:"Encouragement ids to mark; all when omitted."`
}

func (c *CommunityReadCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	var ids []string
	if len(c.IDs) > 0 {
		received, err := ctx.Community.Inbox(context.Background(), userID, true)
		if err != nil {
			return err
		}
		for _, ref := range c.IDs {
			for _, e := range received {
				if ref != "" && strings.HasPrefix(e.ID, ref) {
					ids = append(ids, e.ID)
				}
			}
		}
		if len(ids) == 0 {
			ctx.Println("Nothing to mark.")
			return nil
		}
	}
	n, err := ctx.Community.MarkRead(context.Background(), userID, ids)
	if err != nil {
		return err
	}
	ctx.Printf("Marked %d as read.\n", n)
	return nil
}
