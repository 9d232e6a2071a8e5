package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/stride/internal/backup"
	"github.com/julianstephens/stride/internal/community"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/storage/sqlite"
	"github.com/julianstephens/stride/internal/tracker"
)

type Context struct {
	Store     storage.Provider
	Tracker   *tracker.Service
	Community *community.Service

	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Writer(), args...)
}

// PrintJSON writes v as indented JSON.
func (c *Context) PrintJSON(v interface{}) error {
	enc := json.NewEncoder(c.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// User returns the local user id, the identity every CLI command acts as.
func (c *Context) User() (string, error) {
	return c.Tracker.LocalUser(context.Background())
}

// PerformAutomaticBackup backs up a SQLite store and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Bar renders a fixed-width progress bar for a percentage.
func Bar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func Check(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
