package habits

import (
	"context"

	"github.com/julianstephens/stride/internal/cli"
)

type ShieldCmd struct {
	Use    ShieldUseCmd    `cmd:"" help:"Protect today's streaks (one shield per 7 days)."`
	Status ShieldStatusCmd `cmd:"" help:"Show shield availability."`
}

type ShieldUseCmd struct {
	Habit string `arg:"" optional:"" help:"Habit id or prefix; all habits when omitted."`
}

func (c *ShieldUseCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	habitID := ""
	if c.Habit != "" {
		habit, err := ctx.Habit(c.Habit)
		if err != nil {
			return err
		}
		habitID = habit.ID
	}
	res, err := ctx.Tracker.UseShield(context.Background(), userID, habitID)
	if err != nil {
		return err
	}
	if !res.Allowed {
		ctx.Printf("Shield on cooldown, next available %s\n", res.NextAvailable.Local().Format("Mon 2006-01-02 15:04"))
		return nil
	}
	ctx.Printf("🛡  Shield active for %s until %s\n", res.Shield.Day, res.ExpiresAt.Local().Format("Mon 15:04"))
	return nil
}

type ShieldStatusCmd struct{}

func (c *ShieldStatusCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	res, err := ctx.Tracker.ShieldStatus(context.Background(), userID)
	if err != nil {
		return err
	}
	if res.Shield != nil && res.ExpiresAt != nil {
		ctx.Printf("Active shield for %s, expires %s\n", res.Shield.Day, res.ExpiresAt.Local().Format("Mon 15:04"))
	}
	if res.Allowed {
		ctx.Println("A shield is available.")
	} else {
		ctx.Printf("Next shield available %s\n", res.NextAvailable.Local().Format("Mon 2006-01-02 15:04"))
	}
	return nil
}
