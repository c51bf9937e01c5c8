// Package history records run outcomes in a SQLite database for later
// inspection with any sqlite client. Recording failures never affect the
// run's exit status.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (and creates if needed) the history database at path
// and ensures required tables exist.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Basic health check + apply a few safe pragmas.
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign_keys: %w", err)
	}
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// bootstrap creates tables/indexes if missing.
func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
  id             TEXT PRIMARY KEY,
  started_at     TEXT NOT NULL,
  finished_at    TEXT NOT NULL,
  pool_size      INTEGER NOT NULL,
  settings_hash  TEXT,
  total_files    INTEGER NOT NULL,
  failed_files   INTEGER NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS run_files (
  run_id      TEXT NOT NULL REFERENCES runs(id),
  file        TEXT NOT NULL,
  exit_code   INTEGER NOT NULL,
  timed_out   INTEGER NOT NULL DEFAULT 0,
  duration_ms INTEGER NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap history schema: %w", err)
		}
	}
	return nil
}
