package goals

import (
	"context"
	"sort"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/templates"
	"github.com/julianstephens/stride/internal/validation"
)

type GoalCmd struct {
	Add       GoalAddCmd       `cmd:"" help:"Create a goal with its habits."`
	List      GoalListCmd      `cmd:"" help:"List goals."`
	Show      GoalShowCmd      `cmd:"" help:"Show a goal with its projection and current week."`
	Update    GoalUpdateCmd    `cmd:"" help:"Update a goal's title, target or deadline."`
	Delete    GoalDeleteCmd    `cmd:"" help:"Delete a goal and everything attached to it."`
	Templates GoalTemplatesCmd `cmd:"" help:"List goal types and their habit templates."`
}

type GoalAddCmd struct {
	Type        string   `help:"Goal type (weight-loss, reading)." enum:",weight-loss,reading" default:""`
	Title       string   `help:"Goal title."`
	StartValue  float64  `help:"Current weight, or books already read."`
	Target      float64  `help:"Target weight or number of books."`
	Unit        string   `help:"Unit, defaults to the goal type's unit."`
	Start       string   `help:"Start date (YYYY-MM-DD), defaults to today."`
	Deadline    string   `help:"Deadline (YYYY-MM-DD), at least 12 weeks after the start."`
	Habit       []string `help:"Habit template id to attach (repeatable)."`
	CustomHabit []string `help:"Name of a custom habit to attach (repeatable)."`
	Interactive bool     `short:"i" help:"Fill in the goal with a form."`
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	if c.Interactive {
		if err := c.fill(); err != nil {
			return err
		}
	}
	req := validation.GoalRequest{
		Type:        constants.GoalType(c.Type),
		Title:       c.Title,
		StartValue:  c.StartValue,
		TargetValue: c.Target,
		Unit:        c.Unit,
		StartDate:   c.Start,
		Deadline:    c.Deadline,
	}
	for _, id := range c.Habit {
		req.Habits = append(req.Habits, validation.HabitRequest{TemplateID: id, Name: templateName(req.Type, id)})
	}
	for _, name := range c.CustomHabit {
		req.Habits = append(req.Habits, validation.HabitRequest{TemplateID: constants.TemplateCustom, Name: name})
	}

	goal, habits, err := ctx.Tracker.CreateGoalWithHabits(context.Background(), userID, req)
	if err != nil {
		return err
	}
	ctx.Printf("Created goal %s (%s): %s\n", cli.ShortID(goal.ID), goal.Type, goal.Title)
	ctx.Printf("  %g → %g %s by %s (%d weeks)\n", goal.StartValue, goal.TargetValue, goal.Unit, goal.Deadline, goal.DurationWeeks)
	for _, h := range habits {
		ctx.Printf("  + %s  %s\n", cli.ShortID(h.ID), h.Name)
	}
	return nil
}

// templateName returns the template's display name, or the id itself so
// that an unknown template still reaches validation with a name.
func templateName(goalType constants.GoalType, id string) string {
	if t, ok := templates.Habit(goalType, id); ok {
		return t.Name
	}
	return id
}

type GoalListCmd struct {
	JSON bool `help:"Print goals as JSON."`
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.User()
	if err != nil {
		return err
	}
	goals, err := ctx.Tracker.ListGoals(context.Background(), userID)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(goals)
	}
	if len(goals) == 0 {
		ctx.Println("No goals found. Create one with 'stride goal add'.")
		return nil
	}
	for _, g := range goals {
		status := ""
		if g.IsComplete() {
			status = " [ACHIEVED]"
		}
		ctx.Printf("%s  %-12s %-30s %g/%g %s  due %s%s\n", cli.ShortID(g.ID), g.Type, g.Title, g.CurrentValue, g.TargetValue, g.Unit, g.Deadline, status)
	}
	return nil
}

type GoalShowCmd struct {
	ID   string `arg:"" help:"Goal id or prefix."`
	JSON bool   `help:"Print as JSON."`
}

func (c *GoalShowCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.ID)
	if err != nil {
		return err
	}
	bg := context.Background()
	proj, err := ctx.Tracker.ProjectCompletion(bg, goal.ID)
	if err != nil {
		return err
	}
	week, err := ctx.Tracker.CurrentWeekProgress(bg, goal.ID)
	if err != nil {
		return err
	}
	habits, err := ctx.Tracker.ListHabits(bg, goal.UserID, goal.ID)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(map[string]interface{}{
			"goal": goal, "projection": proj, "current_week": week, "habits": habits,
		})
	}

	ctx.Printf("%s (%s)\n", goal.Title, goal.Type)
	ctx.Printf("  ID:         %s\n", goal.ID)
	ctx.Printf("  Progress:   %g → %g (now %g) %s\n", goal.StartValue, goal.TargetValue, goal.CurrentValue, goal.Unit)
	ctx.Printf("  Schedule:   %s to %s (%d weeks)\n", goal.StartDate, goal.Deadline, goal.DurationWeeks)
	ctx.Printf("  Projection: %s\n", proj.String())
	ctx.Printf("  Week %d:     %s %d/%d habits (%.0f%%)\n", week.WeekNumber, cli.Bar(int(week.CompletionRate), 20),
		week.HabitsCompleted, week.HabitsAvailable, week.CompletionRate)
	printHabits(ctx, habits)
	return nil
}

func printHabits(ctx *cli.Context, habits []models.Habit) {
	if len(habits) == 0 {
		return
	}
	ctx.Println("  Habits:")
	for _, h := range habits {
		ctx.Printf("    %s  %-28s streak %d (best %d)\n", cli.ShortID(h.ID), h.Name, h.CurrentStreak, h.LongestStreak)
	}
}

type GoalUpdateCmd struct {
	ID       string   `arg:"" help:"Goal id or prefix."`
	Title    *string  `help:"New title."`
	Target   *float64 `help:"New target value."`
	Deadline *string  `help:"New deadline (YYYY-MM-DD)."`
}

func (c *GoalUpdateCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.ID)
	if err != nil {
		return err
	}
	updated, err := ctx.Tracker.UpdateGoal(context.Background(), goal.ID, validation.GoalUpdateRequest{
		Title: c.Title, TargetValue: c.Target, Deadline: c.Deadline,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Updated goal %s: %s, target %g, due %s (%d weeks)\n",
		cli.ShortID(updated.ID), updated.Title, updated.TargetValue, updated.Deadline, updated.DurationWeeks)
	return nil
}

type GoalDeleteCmd struct {
	ID string `arg:"" help:"Goal id or prefix."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goal(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.DeleteGoal(context.Background(), goal.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted goal: %s\n", goal.Title)
	return nil
}

type GoalTemplatesCmd struct{}

func (c *GoalTemplatesCmd) Run(ctx *cli.Context) error {
	all, err := templates.All()
	if err != nil {
		return err
	}
	types := make([]string, 0, len(all))
	for t := range all {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		gt := all[constants.GoalType(t)]
		ctx.Printf("%s %s (%s, unit %s)\n", gt.Icon, gt.Title, t, gt.Unit)
		for _, h := range gt.Habits {
			ctx.Printf("    %-12s %-26s %s\n", h.ID, h.Name, h.Frequency)
		}
	}
	return nil
}
