package habits

import (
	"context"

	"github.com/julianstephens/stride/internal/cli"
)

// LogCmd marks a habit done (or not done) for today. The write goes through
// the fasting conflict resolver, so sibling habits may be un-marked.
type LogCmd struct {
	Habit string `arg:"" help:"Habit id or prefix."`
	Date  string `help:"Day to log (YYYY-MM-DD); only today is accepted."`
	Undo  bool   `help:"Mark the habit as not done."`
	Notes string `help:"Optional note."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Habit(c.Habit)
	if err != nil {
		return err
	}
	bg := context.Background()
	day := c.Date
	if day == "" {
		if day, err = ctx.Tracker.Today(bg); err != nil {
			return err
		}
	}

	writes, _, err := ctx.Tracker.LogHabit(bg, habit.ID, day, !c.Undo, c.Notes)
	if err != nil {
		return err
	}

	ctx.Printf("%s %s on %s\n", cli.Check(!c.Undo), habit.Name, day)
	for _, w := range writes {
		if !w.Demoted {
			continue
		}
		name := w.HabitID
		if h, err := ctx.Tracker.GetHabit(bg, w.HabitID); err == nil {
			name = h.Name
		}
		ctx.Printf("    un-marked %s (conflicts with %s)\n", name, habit.Name)
	}
	if st, err := ctx.Tracker.GetStreak(bg, habit.ID); err == nil {
		ctx.Printf("  Streak: %d (best %d)\n", st.Current, st.Longest)
	}
	return nil
}
