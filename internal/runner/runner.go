// Package runner executes clang-tidy child processes and enforces timeouts.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/mattjoyce/tidypool/internal/log"
)

// terminationGracePeriod is the time we wait after SIGTERM before sending SIGKILL.
const terminationGracePeriod = 5 * time.Second

// Outcome is the result of one clang-tidy invocation.
type Outcome struct {
	// ExitCode is the process exit status, or -1 when the process was
	// killed before reporting one.
	ExitCode int

	// Stdout and Stderr hold the captured streams, unmerged. On the
	// timeout path they hold whatever was produced up to the kill.
	Stdout []byte
	Stderr []byte

	// TimedOut is set when the invocation was forcibly terminated.
	TimedOut bool
}

// Failed reports whether the outcome counts against the failure list.
func (o Outcome) Failed() bool {
	return o.ExitCode != 0 || o.TimedOut
}

// Runner spawns one child process per invocation.
type Runner struct {
	logger *slog.Logger
}

// New creates a Runner.
func New() *Runner {
	return &Runner{logger: log.WithComponent("runner")}
}

// Run executes argv as a child process and captures its output. A timeout
// of zero means no limit. If the timeout elapses or ctx is cancelled, the
// child's whole process group is terminated (SIGTERM, grace period,
// SIGKILL) and reaped before Run returns; no orphans are left behind.
func (r *Runner) Run(ctx context.Context, argv []string, timeout time.Duration) (Outcome, error) {
	cmd := exec.Command(argv[0], argv[1:]...)

	// Own process group, so termination reaches anything clang-tidy spawns.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("spawning clang-tidy", "file", argv[len(argv)-1], "timeout", timeout)

	if err := cmd.Start(); err != nil {
		return Outcome{ExitCode: -1}, fmt.Errorf("start process: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case <-timeoutC:
		r.logger.Warn("clang-tidy timed out, killing", "file", argv[len(argv)-1])
		err := r.terminate(cmd, waitErr)
		return Outcome{
			ExitCode: exitCode(err),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			TimedOut: true,
		}, nil

	case <-ctx.Done():
		r.logger.Debug("run cancelled, killing clang-tidy", "file", argv[len(argv)-1])
		err := r.terminate(cmd, waitErr)
		return Outcome{
			ExitCode: exitCode(err),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}, ctx.Err()

	case err := <-waitErr:
		outcome := Outcome{
			ExitCode: exitCode(err),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}
		if err != nil {
			if _, ok := err.(*exec.ExitError); !ok {
				return outcome, fmt.Errorf("wait for process: %w", err)
			}
		}
		return outcome, nil
	}
}

// terminate sends SIGTERM to the child's process group, escalates to
// SIGKILL after the grace period, and reaps the process. Returns the
// child's Wait error.
func (r *Runner) terminate(cmd *exec.Cmd, waitErr chan error) error {
	pgid := cmd.Process.Pid
	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		r.logger.Error("failed to send SIGTERM", "error", err)
	}

	grace := time.NewTimer(terminationGracePeriod)
	defer grace.Stop()

	select {
	case err := <-waitErr:
		return err
	case <-grace.C:
		r.logger.Warn("clang-tidy did not exit after SIGTERM, sending SIGKILL")
		if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil {
			r.logger.Error("failed to send SIGKILL", "error", err)
		}
		return <-waitErr
	}
}

// Preflight runs the -list-checks probe once to verify clang-tidy is
// invocable. The probe's stdout is relayed unless quiet is set; stderr is
// always relayed. Any failure here is fatal to the run.
func (r *Runner) Preflight(ctx context.Context, argv []string, quiet bool) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if quiet {
		cmd.Stdout = io.Discard
	} else {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("unable to run clang-tidy: %w", err)
	}
	return nil
}

// exitCode maps a Wait error to a numeric exit status. A signal-killed
// process reports -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
