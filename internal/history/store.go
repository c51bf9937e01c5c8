package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileResult is the recorded outcome of one file.
type FileResult struct {
	File     string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// RunRecord is one complete run of the tool.
type RunRecord struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	PoolSize     int
	SettingsHash string
	Files        []FileResult
	FailedCount  int
}

// Store persists run records.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open history database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordRun inserts the run and its per-file outcomes in one transaction
// and returns the generated run id.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs(id, started_at, finished_at, pool_size, settings_hash, total_files, failed_files)
VALUES(?, ?, ?, ?, ?, ?, ?);
`, id,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.PoolSize,
		nullIfEmpty(rec.SettingsHash),
		len(rec.Files),
		rec.FailedCount)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, f := range rec.Files {
		_, err = tx.ExecContext(ctx, `
INSERT INTO run_files(run_id, file, exit_code, timed_out, duration_ms)
VALUES(?, ?, ?, ?, ?);
`, id, f.File, f.ExitCode, boolToInt(f.TimedOut), f.Duration.Milliseconds())
		if err != nil {
			return "", fmt.Errorf("insert run file %s: %w", f.File, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history transaction: %w", err)
	}
	return id, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
