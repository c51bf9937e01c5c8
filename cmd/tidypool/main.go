// Command tidypool runs clang-tidy over all files in a compilation
// database, fanning invocations out to a fixed-size worker pool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattjoyce/tidypool/internal/compdb"
	"github.com/mattjoyce/tidypool/internal/config"
	"github.com/mattjoyce/tidypool/internal/invoke"
	"github.com/mattjoyce/tidypool/internal/log"
	"github.com/mattjoyce/tidypool/internal/pool"
	"github.com/mattjoyce/tidypool/internal/runner"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

// stringList collects repeatable flags in the order given.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// parseFlags builds the run options from the command line, overlaying any
// -settings file under explicitly set flags. Returns the options and the
// positional inclusion patterns.
func parseFlags(args []string, errOut io.Writer) (*config.Options, []string, error) {
	fs := flag.NewFlagSet("tidypool", flag.ContinueOnError)
	fs.SetOutput(errOut)

	opts := config.Defaults()
	var (
		extraArgs       stringList
		extraArgsBefore stringList
		timeoutSec      int
		settingsPath    string
		showVersion     bool
	)

	fs.StringVar(&opts.ClangTidyBinary, "clang-tidy-binary", opts.ClangTidyBinary, "path to clang-tidy binary")
	fs.StringVar(&opts.Checks, "checks", opts.Checks, "checks filter, when not specified, use clang-tidy default")
	fs.StringVar(&opts.Config, "config", opts.Config, "inline clang-tidy configuration in YAML/JSON format; use either -config or -config-file, not both")
	fs.StringVar(&opts.ConfigFile, "config-file", opts.ConfigFile, "path of .clang-tidy or custom config file")
	fs.StringVar(&opts.FormatStyle, "format-style", opts.FormatStyle, "style for formatting code around applied fixes")
	fs.StringVar(&opts.HeaderFilter, "header-filter", opts.HeaderFilter, "regular expression matching the names of the headers to output diagnostics from")
	fs.BoolVar(&opts.Fix, "fix", opts.Fix, "apply fix-its")
	fs.BoolVar(&opts.AllowEnablingAlphaCheckers, "allow-enabling-alpha-checkers", opts.AllowEnablingAlphaCheckers, "allow alpha checkers from clang-analyzer")
	fs.BoolVar(&opts.Quiet, "quiet", opts.Quiet, "run clang-tidy in quiet mode")
	fs.IntVar(&opts.Jobs, "j", opts.Jobs, "number of tidy instances to be run in parallel, 0 means one per CPU")
	fs.IntVar(&timeoutSec, "timeout", 0, "max seconds per clang-tidy invocation, 0 means no limit")
	fs.StringVar(&opts.BuildPath, "p", opts.BuildPath, "path used to read a compile command database")
	fs.Var(&extraArgs, "extra-arg", "additional argument to append to the compiler command line (repeatable)")
	fs.Var(&extraArgsBefore, "extra-arg-before", "additional argument to prepend to the compiler command line (repeatable)")
	fs.StringVar(&opts.ExcludedFilePatterns, "excluded-file-patterns", opts.ExcludedFilePatterns, "files to be excluded (regex on path)")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "diagnostic log level on stderr (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&opts.HistoryDB, "history-db", opts.HistoryDB, "path of a SQLite database to record run outcomes in")
	fs.StringVar(&settingsPath, "settings", "", "YAML file supplying default option values")
	fs.BoolVar(&showVersion, "version", false, "show version information")

	fs.Usage = func() {
		fmt.Fprintf(errOut, "Usage: tidypool [flags] [file-pattern ...]\n\n"+
			"Runs clang-tidy over all files in a compilation database.\n"+
			"Positional arguments are regexes selecting files to check (default: all).\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if showVersion {
		fmt.Fprintf(errOut, "tidypool version %s\n", version)
		return nil, nil, flag.ErrHelp
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["timeout"] {
		opts.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if len(extraArgs) > 0 {
		opts.ExtraArgs = extraArgs
	}
	if len(extraArgsBefore) > 0 {
		opts.ExtraArgsBefore = extraArgsBefore
	}

	if settingsPath != "" {
		base, err := config.LoadSettings(settingsPath)
		if err != nil {
			return nil, nil, err
		}
		applyUnset(opts, base, set, len(extraArgs) > 0, len(extraArgsBefore) > 0)
	}

	return opts, fs.Args(), nil
}

// applyUnset copies settings-file values into opts for every flag the user
// did not set explicitly. Command line wins over file, file wins over
// built-in defaults.
func applyUnset(opts, base *config.Options, set map[string]bool, extraSet, extraBeforeSet bool) {
	if !set["clang-tidy-binary"] {
		opts.ClangTidyBinary = base.ClangTidyBinary
	}
	if !set["checks"] {
		opts.Checks = base.Checks
	}
	if !set["config"] {
		opts.Config = base.Config
	}
	if !set["config-file"] {
		opts.ConfigFile = base.ConfigFile
	}
	if !set["format-style"] {
		opts.FormatStyle = base.FormatStyle
	}
	if !set["header-filter"] {
		opts.HeaderFilter = base.HeaderFilter
	}
	if !set["fix"] {
		opts.Fix = base.Fix
	}
	if !set["allow-enabling-alpha-checkers"] {
		opts.AllowEnablingAlphaCheckers = base.AllowEnablingAlphaCheckers
	}
	if !set["quiet"] {
		opts.Quiet = base.Quiet
	}
	if !set["j"] {
		opts.Jobs = base.Jobs
	}
	if !set["timeout"] {
		opts.Timeout = base.Timeout
	}
	if !set["p"] {
		opts.BuildPath = base.BuildPath
	}
	if !extraSet {
		opts.ExtraArgs = base.ExtraArgs
	}
	if !extraBeforeSet {
		opts.ExtraArgsBefore = base.ExtraArgsBefore
	}
	if !set["excluded-file-patterns"] {
		opts.ExcludedFilePatterns = base.ExcludedFilePatterns
	}
	if !set["log-level"] {
		opts.LogLevel = base.LogLevel
	}
	if !set["history-db"] {
		opts.HistoryDB = base.HistoryDB
	}
	opts.SettingsPath = base.SettingsPath
}

func run(args []string) int {
	opts, patterns, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "tidypool: %v\n", err)
		return 1
	}

	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "tidypool: %v\n", err)
		return 1
	}

	log.Setup(opts.LogLevel)
	logger := log.WithComponent("main")

	if opts.BuildPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			logger.Error("cannot determine working directory", "error", err)
			return 1
		}
		buildPath, err := compdb.Discover(wd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: could not find compilation database.")
			return 1
		}
		opts.BuildPath = buildPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New()
	if err := r.Preflight(ctx, invoke.PreflightArgs(opts), opts.Quiet); err != nil {
		fmt.Fprintln(os.Stderr, "Unable to run clang-tidy.")
		logger.Error("pre-flight check failed", "error", err)
		return 1
	}

	files, err := compdb.Load(opts.BuildPath)
	if err != nil {
		logger.Error("failed to load compilation database", "build_path", opts.BuildPath, "error", err)
		return 1
	}
	files, err = compdb.Filter(files, patterns, opts.ExcludedFilePatterns)
	if err != nil {
		logger.Error("invalid file filter", "error", err)
		return 1
	}

	fmt.Printf("Will check %d files\n", len(files))

	p := pool.New(opts.Jobs, r, func(file string) []string {
		return invoke.Build(file, opts)
	}, opts.Timeout, os.Stdout, os.Stderr)

	var collector *resultCollector
	if opts.HistoryDB != "" {
		collector = &resultCollector{}
		p.OnResult(collector.record)
	}

	startedAt := time.Now()
	p.Start(ctx)
	for _, f := range files {
		if err := p.Enqueue(ctx, f); err != nil {
			break
		}
	}
	p.Close()
	p.Drain()
	p.Wait()

	failed := p.FailedFiles()

	if collector != nil {
		writeHistory(opts, p.Size(), startedAt, collector, len(failed), logger)
	}

	if ctx.Err() != nil {
		logger.Warn("run interrupted")
		return 1
	}
	if len(failed) > 0 {
		logger.Info("run completed with failures", "failed", len(failed), "total", len(files))
		return 1
	}
	logger.Info("run completed", "total", len(files))
	return 0
}
