package habits

import (
	"context"

	"github.com/julianstephens/stride/internal/cli"
)

type DayCmd struct {
	Day  string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD), defaults to today."`
	JSON bool   `help:"Print as JSON."`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	view, err := ctx.Tracker.Day(context.Background(), userID, c.Day)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(view)
	}

	header := view.Day
	if view.ReadOnly {
		header += " (read-only)"
	}
	ctx.Println(header)
	if len(view.Groups) == 0 {
		ctx.Println("  No habits yet. Add a goal with 'stride goal add'.")
		return nil
	}
	for _, g := range view.Groups {
		title := "Other habits"
		if g.Goal != nil {
			title = g.Goal.Title
		}
		ctx.Printf("\n%s  %s %d/%d (%d%%)\n", title, cli.Bar(g.Percent, 10), g.Completed, g.MaxAchievable, g.Percent)
		for _, h := range g.Habits {
			line := "  " + cli.Check(h.Completed) + " " + h.Habit.Name
			if h.Notes != "" {
				line += "  (" + h.Notes + ")"
			}
			ctx.Println(line)
		}
	}
	return nil
}
