package system

import (
	"context"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/scheduler"
)

type SchedulerCmd struct {
	RunOnce SchedulerRunOnceCmd `cmd:"" name:"run-once" help:"Run one scheduled job now."`
}

type SchedulerRunOnceCmd struct {
	Job string `arg:"" enum:"weekly_capture,streak_refresh" help:"Job to run (weekly_capture, streak_refresh)."`
}

// Run executes the job outside the serve loop, e.g. from cron.
func (c *SchedulerRunOnceCmd) Run(ctx *cli.Context) error {
	if err := scheduler.New(ctx.Tracker).RunJob(context.Background(), c.Job); err != nil {
		return err
	}
	ctx.Printf("Ran %s\n", c.Job)
	return nil
}
