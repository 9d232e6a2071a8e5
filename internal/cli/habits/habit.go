package habits

import (
	"context"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a habit, optionally attached to a goal."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its logs."`
	Streak HabitStreakCmd `cmd:"" help:"Show a habit's streak and milestones."`
	Rate   HabitRateCmd   `cmd:"" help:"Show a habit's completion rate."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Goal        string `help:"Goal id or prefix to attach the habit to."`
	Template    string `help:"Template id from the goal type (see 'stride goal templates')."`
	Description string `help:"Description."`
	Frequency   string `help:"Frequency (daily, weekly, flexible)." enum:",daily,weekly,flexible" default:""`
	Color       string `help:"Hex color such as #3b82f6."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	req := validation.HabitRequest{
		Name:        c.Name,
		Description: c.Description,
		Frequency:   constants.Frequency(c.Frequency),
		TemplateID:  c.Template,
		Color:       c.Color,
	}
	if c.Goal != "" {
		goal, err := ctx.Goal(c.Goal)
		if err != nil {
			return err
		}
		req.GoalID = goal.ID
	}
	habit, err := ctx.Tracker.CreateHabit(context.Background(), userID, req)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit %s: %s (%s)\n", cli.ShortID(habit.ID), habit.Name, habit.Frequency)
	return nil
}

type HabitListCmd struct {
	Goal string `help:"Only habits of this goal (id or prefix)."`
	JSON bool   `help:"Print as JSON."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	goalID := ""
	if c.Goal != "" {
		goal, err := ctx.Goal(c.Goal)
		if err != nil {
			return err
		}
		goalID = goal.ID
	}
	habits, err := ctx.Tracker.ListHabits(context.Background(), userID, goalID)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(habits)
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}
	for _, h := range habits {
		template := h.TemplateID
		if template == "" {
			template = "-"
		}
		ctx.Printf("%s  %-28s %-10s %-10s streak %d (best %d)\n", cli.ShortID(h.ID), h.Name, h.Frequency, template, h.CurrentStreak, h.LongestStreak)
	}
	return nil
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Habit id or prefix."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Habit(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.DeleteHabit(context.Background(), habit.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitStreakCmd struct {
	ID string `arg:"" help:"Habit id or prefix."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Habit(c.ID)
	if err != nil {
		return err
	}
	bg := context.Background()
	st, err := ctx.Tracker.GetStreak(bg, habit.ID)
	if err != nil {
		return err
	}
	ms, err := ctx.Tracker.Milestones(bg, habit.ID)
	if err != nil {
		return err
	}
	ctx.Printf("%s: current streak %d, longest %d\n", habit.Name, st.Current, st.Longest)
	if len(ms.Reached) > 0 {
		ctx.Printf("  Milestones reached: %v\n", ms.Reached)
	}
	if ms.Next > 0 {
		ctx.Printf("  Next milestone: %d days (%d to go)\n", ms.Next, ms.DaysToNext)
	}
	return nil
}

type HabitRateCmd struct {
	ID     string `arg:"" help:"Habit id or prefix."`
	Window int    `help:"Window in days, defaults to the configured window."`
}

func (c *HabitRateCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Habit(c.ID)
	if err != nil {
		return err
	}
	rate, err := ctx.Tracker.GetCompletionRate(context.Background(), habit.ID, c.Window)
	if err != nil {
		return err
	}
	ctx.Printf("%s: %s %d%%\n", habit.Name, cli.Bar(rate, 20), rate)
	return nil
}
