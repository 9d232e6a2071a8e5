package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/storage/sqlite"
	"github.com/julianstephens/stride/internal/utils"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "stride.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()
	addGoal(t, store, "g1")
	return dbPath
}

func addGoal(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	err := store.AddGoal(context.Background(), models.Goal{
		ID: id, UserID: "u1", Type: constants.GoalReading, Title: id, TargetValue: 10,
		Unit: "books", StartDate: "2024-06-05", Deadline: "2024-10-01", DurationWeeks: 17,
		CreatedAt: time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}
}

func countGoals(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM goals").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestCreateAndList(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.clock = utils.NewFakeClock(time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC))

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(first) != "stride-20240605-120000.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(first))
	}
	// Same second: a counter is appended.
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(second) != "stride-20240605-120000-1.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(second))
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
	if backups[0].Size == 0 {
		t.Error("backup should not be empty")
	}
	if countGoals(t, first) != 1 {
		t.Error("backup should contain the goal")
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	clock := utils.NewFakeClock(time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC))
	mgr.clock = clock

	var oldest string
	for i := 0; i < constants.MaxBackups+2; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if i == 0 {
			oldest = path
		}
		clock.AdvanceDays(1)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("kept %d backups, want %d", len(backups), constants.MaxBackups)
	}
	if _, err := os.Stat(oldest); !os.IsNotExist(err) {
		t.Error("oldest backup should be rotated out")
	}
	if !backups[0].Timestamp.After(backups[len(backups)-1].Timestamp) {
		t.Error("backups should be listed newest first")
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.clock = utils.NewFakeClock(time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC))

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	addGoal(t, store, "g2")
	store.Close()
	if countGoals(t, dbPath) != 2 {
		t.Fatal("expected two goals before restore")
	}

	previous, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if previous == "" || countGoals(t, previous) != 2 {
		t.Error("the current database should be backed up before restoring")
	}
	if countGoals(t, dbPath) != 1 {
		t.Error("restore should bring back the single goal")
	}
}

func TestRestoreRejectsInvalidFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error for missing backup")
	}

	junk := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(junk, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(junk); err == nil {
		t.Error("expected error for a corrupt backup")
	}

	foreign := filepath.Join(t.TempDir(), "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE other (id INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if _, err := mgr.Restore(foreign); err == nil {
		t.Error("expected error for a database without a schema version")
	}
	if countGoals(t, dbPath) != 1 {
		t.Error("a rejected restore must leave the database untouched")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"stride-20240605-120000.db", true},
		{"stride-20240605-120000-3.db", true},
		{"other-20240605-120000.db", false},
		{"stride-garbage.db", false},
		{"stride-20240605-120000.db.tmp", false},
	}
	for _, tt := range tests {
		if _, _, ok := parseName(tt.name); ok != tt.ok {
			t.Errorf("parseName(%q) = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}
