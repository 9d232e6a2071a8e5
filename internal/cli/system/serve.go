package system

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/scheduler"
	"github.com/julianstephens/stride/internal/server"
)

type ServeCmd struct {
	Addr        string `help:"Listen address." default:"${serve_addr}"`
	NoScheduler bool   `help:"Do not run the weekly capture and streak refresh jobs."`
}

// Run serves the HTTP API and the scheduler until interrupted. The first
// failing component stops the other.
func (c *ServeCmd) Run(ctx *cli.Context) error {
	if c.Addr == "" {
		c.Addr = constants.DefaultServeAddr
	}
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, _, err := ctx.Tracker.SyncCatalog(sigCtx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(sigCtx)
	srv := server.New(ctx.Tracker, ctx.Community)
	g.Go(func() error {
		return srv.Run(gctx, c.Addr)
	})
	if !c.NoScheduler {
		sched := scheduler.New(ctx.Tracker)
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	err := g.Wait()
	logger.Info("Serve stopped", "error", err)
	return err
}
