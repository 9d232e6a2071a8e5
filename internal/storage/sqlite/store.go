// Package sqlite is the default storage backend, a single local database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/migration"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/storage/sqldb"
	"github.com/julianstephens/stride/internal/utils"
	"github.com/julianstephens/stride/migrations"
)

const driverName = "sqlite"

type Store struct {
	*sqldb.DB
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: utils.ExpandPath(path)}
}

var dialect = sqldb.Dialect{
	Name:              driverName,
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

func (s *Store) open() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	dsn := "file:" + s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer connection keeps transactions serialized.
	db.SetMaxOpenConns(1)
	s.db = db
	s.DB = sqldb.New(db, dialect)
	return nil
}

// Init creates the database file, applies migrations and writes default
// settings with a fresh user id when none exist.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.open(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if settings, err := s.GetSettings(ctx); err != nil || settings.UserID == "" {
		if err := s.SaveSettings(ctx, models.DefaultSettings(uuid.NewString())); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.validateSchemaVersion(context.Background())
}

// Close releases the connection; Load or Init reopens it.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, driverName), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply(ctx, func(msg string) { logger.Info(msg) })
	return err
}

func (s *Store) validateSchemaVersion(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	return r.Validate(ctx)
}

// Migrate applies pending migrations to an already initialized database.
func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	r, err := s.runner()
	if err != nil {
		return 0, err
	}
	return r.Apply(ctx, logFn)
}

// SchemaVersion reports the applied and the latest shipped schema versions.
func (s *Store) SchemaVersion(ctx context.Context) (int, int, error) {
	r, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return 0, 0, err
	}
	latest, err := r.LatestVersion()
	if err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
