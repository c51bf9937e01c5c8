// Package invoke builds clang-tidy argument vectors.
package invoke

import (
	"github.com/mattjoyce/tidypool/internal/config"
)

// Build returns the full clang-tidy command line for one source file.
// Flag order is fixed; the target file always comes last.
func Build(file string, opts *config.Options) []string {
	argv := []string{opts.ClangTidyBinary}
	if opts.AllowEnablingAlphaCheckers {
		argv = append(argv, "-allow-enabling-analyzer-alpha-checkers")
	}
	if opts.HeaderFilter != "" {
		argv = append(argv, "-header-filter="+opts.HeaderFilter)
	}
	if opts.Checks != "" {
		argv = append(argv, "-checks="+opts.Checks)
	}
	if opts.Fix {
		argv = append(argv, "-fix")
	}
	for _, arg := range opts.ExtraArgsBefore {
		argv = append(argv, "-extra-arg-before="+arg)
	}
	for _, arg := range opts.ExtraArgs {
		argv = append(argv, "-extra-arg="+arg)
	}
	if opts.BuildPath != "" {
		argv = append(argv, "-p="+opts.BuildPath)
	}
	if opts.Quiet {
		argv = append(argv, "-quiet")
	}
	if opts.Config != "" {
		argv = append(argv, "-config="+opts.Config)
	}
	if opts.ConfigFile != "" {
		argv = append(argv, "-config-file="+opts.ConfigFile)
	}
	if opts.FormatStyle != "" {
		argv = append(argv, "-format-style="+opts.FormatStyle)
	}
	argv = append(argv, file)
	return argv
}

// PreflightArgs returns the -list-checks probe used to verify clang-tidy is
// invocable before any files are dispatched.
func PreflightArgs(opts *config.Options) []string {
	argv := []string{opts.ClangTidyBinary, "-list-checks"}
	if opts.AllowEnablingAlphaCheckers {
		argv = append(argv, "-allow-enabling-analyzer-alpha-checkers")
	}
	if opts.BuildPath != "" {
		argv = append(argv, "-p="+opts.BuildPath)
	}
	if opts.Checks != "" {
		argv = append(argv, "-checks="+opts.Checks)
	}
	argv = append(argv, "-")
	return argv
}
