package habits

import (
	"context"
	"strings"

	"github.com/julianstephens/stride/internal/achievement"
	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/constants"
)

type AchievementCmd struct {
	Sync   AchievementSyncCmd   `cmd:"" help:"Insert missing catalog entries into the store."`
	List   AchievementListCmd   `cmd:"" help:"List achievements with unlock status." default:"1"`
	Stats  AchievementStatsCmd  `cmd:"" help:"Summarize unlocks by rarity."`
	Check  AchievementCheckCmd  `cmd:"" help:"Evaluate a trigger counter and unlock what it earns."`
	Revoke AchievementRevokeCmd `cmd:"" help:"Revoke streak badges (after a broken streak)."`
}

type AchievementSyncCmd struct{}

func (c *AchievementSyncCmd) Run(ctx *cli.Context) error {
	inserted, total, err := ctx.Tracker.SyncCatalog(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("Achievement catalog synced: %d new, %d total\n", inserted, total)
	return nil
}

type AchievementListCmd struct {
	Category string `help:"Only this category (streak, goals, social, consistency)."`
	JSON     bool   `help:"Print as JSON."`
}

func (c *AchievementListCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	list, err := ctx.Tracker.ListAchievementsWithStatus(context.Background(), userID)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(list)
	}
	for _, a := range list {
		if c.Category != "" && string(a.Category) != c.Category {
			continue
		}
		ctx.Printf("%s %s %-22s %-10s %s\n", cli.Check(a.Unlocked), a.Icon, a.Name, a.Rarity, a.Description)
	}
	return nil
}

type AchievementStatsCmd struct{}

func (c *AchievementStatsCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	stats, err := ctx.Tracker.AchievementStats(context.Background(), userID)
	if err != nil {
		return err
	}
	ctx.Printf("Unlocked %d of %d  %s %d%%\n", stats.Unlocked, stats.Total, cli.Bar(stats.Percent, 20), stats.Percent)
	for _, r := range []constants.Rarity{constants.RarityCommon, constants.RarityRare, constants.RarityEpic, constants.RarityLegendary} {
		ctx.Printf("  %-10s %d\n", r, stats.ByRarity[r])
	}
	return nil
}

// AchievementCheckCmd re-evaluates a trigger from what is recorded: streaks,
// completed goals, memberships, cheers sent or sessions.
type AchievementCheckCmd struct {
	Trigger string `arg:"" help:"Trigger (streak, goal_completed, community_joined, community_created, cheer_sent, sessions_completed)."`
}

func (c *AchievementCheckCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	ids, err := ctx.Tracker.RecheckAchievements(context.Background(), userID, achievement.Trigger(c.Trigger))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ctx.Println("No new achievements.")
		return nil
	}
	ctx.Printf("🏆 Unlocked: %s\n", strings.Join(names(ctx, ids), ", "))
	return nil
}

type AchievementRevokeCmd struct{}

func (c *AchievementRevokeCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	ids, err := ctx.Tracker.RevokeStreakBadges(context.Background(), userID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ctx.Println("No streak badges to revoke.")
		return nil
	}
	ctx.Printf("Revoked: %s\n", strings.Join(names(ctx, ids), ", "))
	return nil
}

func names(ctx *cli.Context, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if a, ok := ctx.Tracker.Catalog().Get(id); ok {
			out[i] = a.Name
		}
	}
	return out
}
