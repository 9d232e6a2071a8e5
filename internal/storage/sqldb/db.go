// Package sqldb implements storage.Store over database/sql. The SQLite and
// PostgreSQL backends share these queries and differ only in Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/storage"
)

// Dialect captures the differences between drivers.
type Dialect struct {
	Name string
	// Numbered selects $1-style placeholders instead of ?.
	Numbered bool
	// IsUniqueViolation recognises the driver's unique-constraint error.
	IsUniqueViolation func(error) bool
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is a storage.Store bound either to a connection pool or to a transaction.
type DB struct {
	db      *sql.DB
	q       querier
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{db: db, q: db, dialect: dialect}
}

// WithTx runs fn against a transaction-bound DB. Nested calls reuse the
// outer transaction.
func (d *DB) WithTx(ctx context.Context, fn func(storage.Store) error) error {
	if d.db == nil {
		return fn(d)
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(&DB{q: tx, dialect: d.dialect}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (d *DB) rebind(query string) string {
	if !d.dialect.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := d.q.ExecContext(ctx, d.rebind(query), args...)
	if err != nil && d.dialect.IsUniqueViolation != nil && d.dialect.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	}
	return res, err
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.q.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.q.QueryRowContext(ctx, d.rebind(query), args...)
}

// notFound maps sql.ErrNoRows to the domain not-found error.
func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(kind, id)
	}
	return err
}

// requireRow fails with not-found when an update or delete touched nothing.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound(kind, id)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// timestampLayout is fixed width so stored timestamps sort chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}
