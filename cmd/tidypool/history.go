package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mattjoyce/tidypool/internal/config"
	"github.com/mattjoyce/tidypool/internal/history"
	"github.com/mattjoyce/tidypool/internal/runner"
)

// resultCollector gathers per-file outcomes from the pool's workers.
type resultCollector struct {
	mu      sync.Mutex
	results []history.FileResult
}

func (c *resultCollector) record(file string, outcome runner.Outcome, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, history.FileResult{
		File:     file,
		ExitCode: outcome.ExitCode,
		TimedOut: outcome.TimedOut,
		Duration: elapsed,
	})
}

// writeHistory persists the run record. History problems are logged and
// swallowed: they never change the run's exit status.
func writeHistory(opts *config.Options, poolSize int, startedAt time.Time, c *resultCollector, failedCount int, logger *slog.Logger) {
	// Background context: the run context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := history.OpenSQLite(ctx, opts.HistoryDB)
	if err != nil {
		logger.Error("failed to open history database", "path", opts.HistoryDB, "error", err)
		return
	}
	defer db.Close()

	var settingsHash string
	if opts.SettingsPath != "" {
		settingsHash, err = config.ComputeBlake3Hash(opts.SettingsPath)
		if err != nil {
			logger.Warn("failed to hash settings file", "path", opts.SettingsPath, "error", err)
		}
	}

	c.mu.Lock()
	files := make([]history.FileResult, len(c.results))
	copy(files, c.results)
	c.mu.Unlock()

	id, err := history.NewStore(db).RecordRun(ctx, history.RunRecord{
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
		PoolSize:     poolSize,
		SettingsHash: settingsHash,
		Files:        files,
		FailedCount:  failedCount,
	})
	if err != nil {
		logger.Error("failed to record run history", "error", err)
		return
	}
	logger.Debug("run history recorded", "run_id", id)
}
