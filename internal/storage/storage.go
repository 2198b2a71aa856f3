// Package storage owns the local SQLite store: opening, schema migration
// and last-resort recovery. Repositories build on top of the *sql.DB it
// initializes.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/logging"
	"github.com/dmitrijs2005/planner/internal/storage/migrations"
)

// TimeLayout is the canonical timestamp format used by all tables,
// compatible with SQLite's datetime('now').
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in the canonical store layout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp written by FormatTime or by SQLite itself.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Parse(time.RFC3339, s)
	}
	return t, nil
}

// Open opens the SQLite database at dsn. The schema is not touched;
// call Initialize before handing the handle to repositories.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", common.ErrorStorage, err)
	}
	return db, nil
}

// Initialize prepares the store for use: enables WAL journaling and foreign
// key enforcement, applies pending migrations and verifies the resulting
// structure. If the store fails the basic connectivity or structure probes,
// a single destructive recovery is attempted before giving up.
//
// Initialize is idempotent: running it on an already-correct store applies
// no schema changes and loses no data.
func Initialize(ctx context.Context, db *sql.DB, log logging.Logger) error {
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		return fmt.Errorf("%w: enabling WAL: %w", common.ErrorStorage, err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("%w: enabling foreign keys: %w", common.ErrorStorage, err)
	}

	if err := ProbeConnectivity(ctx, db); err != nil {
		return recoverStore(ctx, db, log, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return recoverStore(ctx, db, log, err)
	}

	if err := ProbeStructure(ctx, db); err != nil {
		return recoverStore(ctx, db, log, err)
	}

	return nil
}

// ProbeConnectivity checks that the store answers basic queries.
func ProbeConnectivity(ctx context.Context, db *sql.DB) error {
	var one int
	if err := db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("%w: connectivity probe: %w", common.ErrorStorage, err)
	}
	return nil
}

// userColumns is the shape the structural probe expects of the users table.
var userColumns = []string{"id", "local_id", "email", "auth_token", "created_at"}

// ProbeStructure checks that the users table exists with the expected
// columns. The users table anchors every foreign key in the schema, so a
// malformed users table means the store is unusable.
func ProbeStructure(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA table_info(users)`)
	if err != nil {
		return fmt.Errorf("%w: structure probe: %w", common.ErrorStorage, err)
	}
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notnull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("%w: structure probe scan: %w", common.ErrorStorage, err)
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: structure probe: %w", common.ErrorStorage, err)
	}

	for _, col := range userColumns {
		if !found[col] {
			return fmt.Errorf("%w: users table is missing column %q", common.ErrorStorage, col)
		}
	}
	return nil
}

// knownTables lists every table the schema owns, in an order safe for
// dropping under foreign key constraints.
var knownTables = []string{"notes", "tasks", "folders", "credentials", "device_flags", "users", "goose_db_version"}

// Recover drops all known tables and recreates the schema from scratch.
// It is destructive and must only be invoked when the store fails its
// probes; Initialize calls it automatically in that case.
func Recover(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = OFF;`); err != nil {
		return fmt.Errorf("%w: disabling foreign keys: %w", common.ErrorStorage, err)
	}
	for _, table := range knownTables {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return fmt.Errorf("%w: dropping %s: %w", common.ErrorStorage, table, err)
		}
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("%w: enabling foreign keys: %w", common.ErrorStorage, err)
	}
	return runMigrations(ctx, db)
}

func recoverStore(ctx context.Context, db *sql.DB, log logging.Logger, cause error) error {
	log.Warn(ctx, "store failed basic checks, attempting recovery", "cause", cause)

	if err := Recover(ctx, db); err != nil {
		return fmt.Errorf("%w: %w (after %w)", common.ErrorRecoveryFailed, err, cause)
	}
	if err := ProbeStructure(ctx, db); err != nil {
		return fmt.Errorf("%w: %w (after %w)", common.ErrorRecoveryFailed, err, cause)
	}

	log.Info(ctx, "store recovered with a fresh schema")
	return nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("%w: setting goose dialect: %w", common.ErrorStorage, err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%w: applying migrations: %w", common.ErrorStorage, err)
	}
	return nil
}
