package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	rec := RunRecord{
		StartedAt:    started,
		FinishedAt:   started.Add(42 * time.Second),
		PoolSize:     4,
		SettingsHash: "abc123",
		FailedCount:  1,
		Files: []FileResult{
			{File: "/src/a.cpp", ExitCode: 0, Duration: 1200 * time.Millisecond},
			{File: "/src/b.cpp", ExitCode: 1, TimedOut: true, Duration: 60 * time.Second},
		},
	}

	store := NewStore(db)
	id, err := store.RecordRun(context.Background(), rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var total, failed, poolSize int
	var hash string
	row := db.QueryRow(`SELECT total_files, failed_files, pool_size, settings_hash FROM runs WHERE id = ?`, id)
	require.NoError(t, row.Scan(&total, &failed, &poolSize, &hash))
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 4, poolSize)
	assert.Equal(t, "abc123", hash)

	rows, err := db.Query(`SELECT file, exit_code, timed_out, duration_ms FROM run_files WHERE run_id = ? ORDER BY file`, id)
	require.NoError(t, err)
	defer rows.Close()

	type fileRow struct {
		file       string
		exitCode   int
		timedOut   int
		durationMs int64
	}
	var got []fileRow
	for rows.Next() {
		var fr fileRow
		require.NoError(t, rows.Scan(&fr.file, &fr.exitCode, &fr.timedOut, &fr.durationMs))
		got = append(got, fr)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)
	assert.Equal(t, fileRow{"/src/a.cpp", 0, 0, 1200}, got[0])
	assert.Equal(t, fileRow{"/src/b.cpp", 1, 1, 60000}, got[1])
}

func TestRecordRunNoSettingsHash(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewStore(db)
	id, err := store.RecordRun(context.Background(), RunRecord{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		PoolSize:   1,
	})
	require.NoError(t, err)

	var hash *string
	row := db.QueryRow(`SELECT settings_hash FROM runs WHERE id = ?`, id)
	require.NoError(t, row.Scan(&hash))
	assert.Nil(t, hash)
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}

func TestOpenSQLiteCreatesParentDir(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	db, err := OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
