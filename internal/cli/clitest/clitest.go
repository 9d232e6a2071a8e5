// Package clitest builds command contexts over a temporary SQLite store.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/community"
	"github.com/julianstephens/stride/internal/storage/sqlite"
	"github.com/julianstephens/stride/internal/tracker"
	"github.com/julianstephens/stride/internal/utils"
)

// Start is the fake clock's initial time, a Wednesday.
var Start = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

type Env struct {
	Ctx    *cli.Context
	Out    *bytes.Buffer
	Clock  *utils.FakeClock
	DBPath string
}

// New returns an environment whose store is not yet initialized.
func New(t *testing.T) *Env {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "stride.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() { store.Close() })

	clock := utils.NewFakeClock(Start)
	trk, err := tracker.New(store, tracker.WithClock(clock))
	if err != nil {
		t.Fatalf("tracker.New failed: %v", err)
	}
	out := &bytes.Buffer{}
	return &Env{
		Ctx:    &cli.Context{Store: store, Tracker: trk, Community: community.New(trk), Out: out},
		Out:    out,
		Clock:  clock,
		DBPath: dbPath,
	}
}

// Initialized returns an environment with an initialized store in UTC.
func Initialized(t *testing.T) *Env {
	t.Helper()
	env := New(t)
	if err := env.Ctx.Store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := context.Background()
	settings, err := env.Ctx.Store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	settings.Timezone = "UTC"
	if err := env.Ctx.Store.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	return env
}

// Output returns and clears the captured command output.
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
