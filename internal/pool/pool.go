// Package pool fans work items out to a fixed set of workers.
//
// The pool owns a bounded queue of file paths. Each worker loops:
// dequeue a file, build its clang-tidy invocation, run it, then under the
// output lock write the captured stdout block followed by the stderr
// block, so blocks from different files never interleave. Failed files
// are appended to a shared list under a separate lock. Drain returns once
// every submitted file has its outcome recorded, regardless of whether
// workers are still waiting for more work.
package pool

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/mattjoyce/tidypool/internal/log"
	"github.com/mattjoyce/tidypool/internal/runner"
)

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/mattjoyce/tidypool/internal/pool Runner

// Runner executes one invocation. Satisfied by *runner.Runner.
type Runner interface {
	Run(ctx context.Context, argv []string, timeout time.Duration) (runner.Outcome, error)
}

// BuildFunc produces the argument vector for one file.
type BuildFunc func(file string) []string

// Pool is a fixed-size worker pool over a bounded work queue.
type Pool struct {
	size    int
	queue   chan string
	runner  Runner
	build   BuildFunc
	timeout time.Duration

	out    io.Writer
	errOut io.Writer
	outMu  sync.Mutex

	failMu sync.Mutex
	failed []string

	pending sync.WaitGroup // one count per submitted file
	workers sync.WaitGroup

	closeOnce sync.Once
	onResult  ResultFunc
	logger    *slog.Logger
}

// ResultFunc observes every recorded outcome. Called concurrently from
// worker goroutines; the consumer synchronizes its own state.
type ResultFunc func(file string, outcome runner.Outcome, elapsed time.Duration)

// New creates a pool of size workers. A size of zero or less means one
// worker per CPU. The queue capacity equals the worker count, bounding
// memory when the producer outruns the workers.
func New(size int, r Runner, build BuildFunc, timeout time.Duration, out, errOut io.Writer) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{
		size:    size,
		queue:   make(chan string, size),
		runner:  r,
		build:   build,
		timeout: timeout,
		out:     out,
		errOut:  errOut,
		logger:  log.WithComponent("pool"),
	}
}

// OnResult registers a per-outcome observer. Set before Start.
func (p *Pool) OnResult(fn ResultFunc) {
	p.onResult = fn
}

// Size returns the resolved worker count.
func (p *Pool) Size() int {
	return p.size
}

// Start spawns the workers. Cancelling ctx makes workers abandon queued
// files without running them and terminates in-flight children through
// the runner.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("starting workers", "count", p.size)
	for i := 0; i < p.size; i++ {
		p.workers.Add(1)
		go p.worker(ctx, i)
	}
}

// Enqueue submits one file, blocking while the queue is full. Returns
// ctx.Err() without submitting if ctx is cancelled first. Must not be
// called after Close.
func (p *Pool) Enqueue(ctx context.Context, file string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.pending.Add(1)
	select {
	case p.queue <- file:
		return nil
	case <-ctx.Done():
		p.pending.Done()
		return ctx.Err()
	}
}

// Close signals that no more files will be enqueued. Workers exit once
// the queue empties. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.queue) })
}

// Drain blocks until every enqueued file has its outcome recorded. It does
// not wait for workers to exit; idle workers may still be polling.
func (p *Pool) Drain() {
	p.pending.Wait()
}

// Wait blocks until all workers have exited. Call after Close.
func (p *Pool) Wait() {
	p.workers.Wait()
}

// FailedFiles returns the files whose outcome was a failure. Call after
// Drain; the returned slice is a copy.
func (p *Pool) FailedFiles() []string {
	p.failMu.Lock()
	defer p.failMu.Unlock()
	out := make([]string, len(p.failed))
	copy(out, p.failed)
	return out
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.workers.Done()
	logger := log.WithWorker(id)

	for file := range p.queue {
		if ctx.Err() != nil {
			// Abandoned: count it done so Drain cannot wedge on an
			// interrupted run.
			p.pending.Done()
			continue
		}
		p.process(ctx, logger, file)
		p.pending.Done()
	}
}

func (p *Pool) process(ctx context.Context, logger *slog.Logger, file string) {
	argv := p.build(file)
	started := time.Now()
	outcome, err := p.runner.Run(ctx, argv, p.timeout)
	elapsed := time.Since(started)
	if err != nil && ctx.Err() == nil {
		logger.Error("invocation failed", "file", file, "error", err)
	}

	// One critical section per file: its stdout block, then its stderr
	// block, with no other worker's bytes in between.
	p.outMu.Lock()
	if len(outcome.Stdout) > 0 {
		p.out.Write(outcome.Stdout)
	}
	if len(outcome.Stderr) > 0 {
		p.errOut.Write(outcome.Stderr)
	}
	p.outMu.Unlock()

	if err != nil || outcome.Failed() {
		p.failMu.Lock()
		p.failed = append(p.failed, file)
		p.failMu.Unlock()
	}

	if p.onResult != nil {
		p.onResult(file, outcome, elapsed)
	}
}
