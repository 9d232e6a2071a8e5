package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/scheduler"
	"github.com/julianstephens/stride/internal/validation"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Update settings."`
}

type SettingsShowCmd struct {
	JSON bool `help:"Print settings as JSON."`
}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Tracker.Settings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if c.JSON {
		return ctx.PrintJSON(settings)
	}

	ctx.Println("Current Settings:")
	ctx.Printf("  User ID:               %s\n", settings.UserID)
	ctx.Printf("  Display Name:          %s\n", settings.DisplayName)
	ctx.Printf("  Timezone:              %s\n", settings.Timezone)
	ctx.Printf("  Rate Window:           %d days\n", settings.RateWindowDays)
	ctx.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
	ctx.Println("\nScheduled Jobs:")
	ctx.Printf("  Weekly Capture:        %s %s\n", settings.WeeklyCaptureWeekday, settings.WeeklyCaptureTime)
	if next, err := scheduler.NextWeeklyCapture(settings, ctx.Tracker.Now()); err == nil {
		ctx.Printf("  Next Capture:          %s\n", next.Format("Mon 2006-01-02 15:04"))
	}
	last := settings.LastStreakRefresh
	if last == "" {
		last = "never"
	}
	ctx.Printf("  Last Streak Refresh:   %s\n", last)
	if at, err := time.Parse(time.RFC3339, settings.LastWeeklyCapture); err == nil {
		ctx.Printf("  Last Capture Slot:     %s\n", at.Local().Format("Mon 2006-01-02 15:04"))
	}
	return nil
}

type SettingsSetCmd struct {
	Timezone             *string `help:"IANA timezone name, or Local."`
	DisplayName          *string `help:"Name shown in community feeds and leaderboards."`
	RateWindowDays       *int    `help:"Default completion-rate window in days."`
	NotificationsEnabled *bool   `help:"Enable or disable desktop notifications."`
	WeeklyCaptureWeekday *string `help:"Weekday of the scheduled weekly snapshot."`
	WeeklyCaptureTime    *string `help:"Time (HH:MM) of the scheduled weekly snapshot."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	req := validation.SettingsRequest{
		Timezone:             c.Timezone,
		DisplayName:          c.DisplayName,
		RateWindowDays:       c.RateWindowDays,
		NotificationsEnabled: c.NotificationsEnabled,
		WeeklyCaptureWeekday: c.WeeklyCaptureWeekday,
		WeeklyCaptureTime:    c.WeeklyCaptureTime,
	}
	if req == (validation.SettingsRequest{}) {
		ctx.Println("No changes specified. Use 'stride settings show' to view settings or flags to update them.")
		return nil
	}
	if _, err := ctx.Tracker.UpdateSettings(context.Background(), req); err != nil {
		return err
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
