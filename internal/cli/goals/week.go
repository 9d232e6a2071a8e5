package goals

import (
	"context"
	"strconv"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/validation"
)

type ProgressCmd struct {
	Log ProgressLogCmd `cmd:"" help:"Record today's weight or books read for a goal."`
}

type ProgressLogCmd struct {
	Goal  string  `arg:"" help:"Goal id or prefix."`
	Value float64 `arg:"" help:"Measured value."`
	Notes string  `help:"Optional note."`
}

func (c *ProgressLogCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.Goal)
	if err != nil {
		return err
	}
	_, updated, err := ctx.Tracker.LogProgress(context.Background(), validation.MetricRequest{
		GoalID: goal.ID, Value: c.Value, Notes: c.Notes,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Logged %g %s for %s\n", c.Value, updated.Unit, updated.Title)
	if updated.IsComplete() {
		ctx.Println("🎉 Goal achieved!")
	}
	return nil
}

type WeekCmd struct {
	Capture  WeekCaptureCmd  `cmd:"" help:"Capture this week's snapshot for every active goal."`
	Log      WeekLogCmd      `cmd:"" help:"Record this week's metric (Sundays, or after capture)."`
	Timeline WeekTimelineCmd `cmd:"" help:"Show a goal's weekly snapshots."`
	Status   WeekStatusCmd   `cmd:"" help:"Show whether this week can be logged."`
	Current  WeekCurrentCmd  `cmd:"" help:"Show live progress for the current week."`
}

type WeekCaptureCmd struct{}

func (c *WeekCaptureCmd) Run(ctx *cli.Context) error {
	n, err := ctx.Tracker.CaptureWeeklySnapshot(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("Captured %d weekly snapshot(s).\n", n)
	return nil
}

type WeekLogCmd struct {
	Goal  string  `arg:"" help:"Goal id or prefix."`
	Value float64 `arg:"" help:"This week's weight or books completed."`
	Notes string  `help:"Optional note."`
}

func (c *WeekLogCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.Goal)
	if err != nil {
		return err
	}
	wp, err := ctx.Tracker.LogWeeklyProgress(context.Background(), validation.MetricRequest{
		GoalID: goal.ID, Value: c.Value, Notes: c.Notes,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Logged week %d for %s\n", wp.WeekNumber, goal.Title)
	printWeek(ctx, wp)
	return nil
}

type WeekTimelineCmd struct {
	Goal string `arg:"" help:"Goal id or prefix."`
	JSON bool   `help:"Print as JSON."`
}

func (c *WeekTimelineCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.Goal)
	if err != nil {
		return err
	}
	weeks, err := ctx.Tracker.ProgressTimeline(context.Background(), goal.ID)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(weeks)
	}
	if len(weeks) == 0 {
		ctx.Println("No weekly snapshots yet.")
		return nil
	}
	for _, wp := range weeks {
		printWeek(ctx, wp)
	}
	return nil
}

func printWeek(ctx *cli.Context, wp models.WeeklyProgress) {
	metric := "-"
	if v, ok := wp.Metric(); ok {
		metric = formatFloat(v)
	}
	trend := ""
	if wp.ProgressDelta != nil {
		sign := "+"
		if !wp.HasProgress {
			sign = ""
		}
		trend = " (" + sign + formatFloat(*wp.ProgressDelta) + ")"
	}
	ctx.Printf("  Week %-3d %s..%s  metric %s%s  habits %d/%d %s %.0f%%\n",
		wp.WeekNumber, wp.WeekStart, wp.WeekEnd, metric, trend,
		wp.HabitsCompletedCount, wp.TotalHabitsAvailable, cli.Bar(int(wp.CompletionRate), 10), wp.CompletionRate)
}

type WeekStatusCmd struct {
	Goal string `arg:"" help:"Goal id or prefix."`
}

func (c *WeekStatusCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.Goal)
	if err != nil {
		return err
	}
	status, err := ctx.Tracker.WeeklyLogStatus(context.Background(), goal.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Week %d: snapshot %s, logging %s\n", status.WeekNumber, yesNo(status.HasSnapshot, "captured", "pending"), yesNo(status.CanLog, "open", "closed until Sunday"))
	return nil
}

type WeekCurrentCmd struct {
	Goal string `arg:"" help:"Goal id or prefix."`
}

func (c *WeekCurrentCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.Goal)
	if err != nil {
		return err
	}
	w, err := ctx.Tracker.CurrentWeekProgress(context.Background(), goal.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Week %d (%s..%s), day %d of 7\n", w.WeekNumber, w.WeekStart, w.WeekEnd, w.DaysElapsed)
	ctx.Printf("  %s %d/%d habits (%.0f%%)\n", cli.Bar(int(w.CompletionRate), 20), w.HabitsCompleted, w.HabitsAvailable, w.CompletionRate)
	return nil
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
