package goals

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/templates"
	"github.com/julianstephens/stride/internal/utils"
)

func parseNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}

func parseDay(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := utils.ParseDay(strings.TrimSpace(s))
	return err
}

// fill prompts for the goal fields, pre-filled with any flags given, then for
// the habit templates of the chosen type.
func (c *GoalAddCmd) fill() error {
	if c.Type == "" {
		c.Type = string(constants.GoalWeightLoss)
	}
	start := formatFloat(c.StartValue)
	target := ""
	if c.Target > 0 {
		target = formatFloat(c.Target)
	}

	details := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Goal type").
				Options(
					huh.NewOption("Weight loss", string(constants.GoalWeightLoss)),
					huh.NewOption("Reading", string(constants.GoalReading)),
				).
				Value(&c.Type),
			huh.NewInput().
				Title("Title").
				Value(&c.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Start value").
				Description("Current weight, or books already read").
				Value(&start).
				Validate(parseNumber),
			huh.NewInput().
				Title("Target").
				Value(&target).
				Validate(parseNumber),
			huh.NewInput().
				Title("Deadline (YYYY-MM-DD)").
				Description("At least 12 weeks from the start").
				Value(&c.Deadline).
				Validate(parseDay),
		),
	)
	if err := details.Run(); err != nil {
		return err
	}
	c.StartValue, _ = strconv.ParseFloat(strings.TrimSpace(start), 64)
	c.Target, _ = strconv.ParseFloat(strings.TrimSpace(target), 64)
	c.Deadline = strings.TrimSpace(c.Deadline)

	gt, err := templates.ForGoal(constants.GoalType(c.Type))
	if err != nil {
		return err
	}
	options := make([]huh.Option[string], 0, len(gt.Habits))
	for _, h := range gt.Habits {
		if h.ID == constants.TemplateCustom {
			continue
		}
		options = append(options, huh.NewOption(h.Name, h.ID).Selected(slices.Contains(c.Habit, h.ID)))
	}
	custom := strings.Join(c.CustomHabit, ", ")
	habits := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Habits").
				Description("omad, moran and autophagy compete on the same day").
				Options(options...).
				Value(&c.Habit),
			huh.NewInput().
				Title("Custom habits").
				Description("Comma separated, optional").
				Value(&custom),
		),
	)
	if err := habits.Run(); err != nil {
		return err
	}
	c.CustomHabit = nil
	for _, name := range strings.Split(custom, ",") {
		if name = strings.TrimSpace(name); name != "" {
			c.CustomHabit = append(c.CustomHabit, name)
		}
	}
	return nil
}
