package config

import "time"

// Options carries everything that shapes a tidypool run: how to invoke
// clang-tidy, how to pick files, and how wide to fan out.
type Options struct {
	// ClangTidyBinary is the path to the clang-tidy executable.
	ClangTidyBinary string `yaml:"clang_tidy_binary"`

	// Checks is the clang-tidy checks filter. Empty means clang-tidy's default.
	Checks string `yaml:"checks"`

	// Config is an inline clang-tidy configuration (YAML/JSON string).
	// Use either Config or ConfigFile, not both.
	Config string `yaml:"config"`

	// ConfigFile is the path of a .clang-tidy or custom config file.
	ConfigFile string `yaml:"config_file"`

	// FormatStyle is the style used to reformat code around applied fixes.
	FormatStyle string `yaml:"format_style"`

	// HeaderFilter is a regex matching header names to emit diagnostics from.
	HeaderFilter string `yaml:"header_filter"`

	// Fix applies suggested fix-its.
	Fix bool `yaml:"fix"`

	// AllowEnablingAlphaCheckers enables alpha checkers from clang-analyzer.
	AllowEnablingAlphaCheckers bool `yaml:"allow_enabling_alpha_checkers"`

	// ExtraArgs are appended to the compiler command line, in order.
	ExtraArgs []string `yaml:"extra_args"`

	// ExtraArgsBefore are prepended to the compiler command line, in order.
	ExtraArgsBefore []string `yaml:"extra_args_before"`

	// BuildPath is the directory holding compile_commands.json. Empty means
	// discover it by walking up from the working directory.
	BuildPath string `yaml:"build_path"`

	// Quiet runs clang-tidy in quiet mode.
	Quiet bool `yaml:"quiet"`

	// Jobs is the worker pool size. 0 means one worker per CPU.
	Jobs int `yaml:"jobs"`

	// Timeout bounds each clang-tidy invocation. 0 means no limit.
	Timeout time.Duration `yaml:"timeout"`

	// ExcludedFilePatterns is a regex of paths to skip.
	ExcludedFilePatterns string `yaml:"excluded_file_patterns"`

	// LogLevel controls diagnostic logging on stderr.
	LogLevel string `yaml:"log_level"`

	// HistoryDB is the path of the SQLite run-history database. Empty
	// disables history recording.
	HistoryDB string `yaml:"history_db"`

	// SettingsPath remembers where the settings file was loaded from, for
	// the run-history fingerprint. Not settable from YAML.
	SettingsPath string `yaml:"-"`
}

// Defaults returns the built-in option values used when neither the
// settings file nor the command line says otherwise.
func Defaults() *Options {
	return &Options{
		ClangTidyBinary: "clang-tidy",
		LogLevel:        "INFO",
	}
}
