package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/stride/internal/backup"
	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Back up and delete the existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized stride storage at: %s\n", ctx.Store.GetConfigPath())

	inserted, total, err := ctx.Tracker.SyncCatalog(context.Background())
	if err != nil {
		return fmt.Errorf("failed to sync achievement catalog: %w", err)
	}
	ctx.Printf("Achievement catalog: %d new, %d total\n", inserted, total)
	return nil
}

// reset removes an existing SQLite database after backing it up.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force is only supported for SQLite storage")
	}
	dbPath := ctx.Store.GetConfigPath()
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	path, err := backup.NewManager(dbPath).Create()
	if err != nil {
		return fmt.Errorf("failed to back up existing database: %w", err)
	}
	ctx.Printf("Backed up existing database to: %s\n", filepath.Base(path))

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}
