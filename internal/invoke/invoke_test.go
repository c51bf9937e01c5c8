package invoke

import (
	"reflect"
	"testing"

	"github.com/mattjoyce/tidypool/internal/config"
)

func TestBuildMinimal(t *testing.T) {
	t.Parallel()

	opts := config.Defaults()
	opts.BuildPath = "/build"

	got := Build("/src/a.cpp", opts)
	want := []string{"clang-tidy", "-p=/build", "/src/a.cpp"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBuildFlagOrder(t *testing.T) {
	t.Parallel()

	opts := &config.Options{
		ClangTidyBinary:            "/usr/bin/clang-tidy",
		AllowEnablingAlphaCheckers: true,
		HeaderFilter:               "include/.*",
		Checks:                     "-*,llvm-header-guard",
		Fix:                        true,
		ExtraArgsBefore:            []string{"-isystem/opt/inc", "-DBEFORE"},
		ExtraArgs:                  []string{"-std=c++17"},
		BuildPath:                  "/build",
		Quiet:                      true,
		Config:                     "{Checks: '*'}",
		ConfigFile:                 "/repo/.clang-tidy",
		FormatStyle:                "file",
	}

	got := Build("/src/b.cpp", opts)
	want := []string{
		"/usr/bin/clang-tidy",
		"-allow-enabling-analyzer-alpha-checkers",
		"-header-filter=include/.*",
		"-checks=-*,llvm-header-guard",
		"-fix",
		"-extra-arg-before=-isystem/opt/inc",
		"-extra-arg-before=-DBEFORE",
		"-extra-arg=-std=c++17",
		"-p=/build",
		"-quiet",
		"-config={Checks: '*'}",
		"-config-file=/repo/.clang-tidy",
		"-format-style=file",
		"/src/b.cpp",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	opts := config.Defaults()
	opts.Checks = "bugprone-*"
	opts.BuildPath = "/build"

	a := Build("/src/a.cpp", opts)
	b := Build("/src/a.cpp", opts)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two builds differ: %v vs %v", a, b)
	}
}

func TestPreflightArgs(t *testing.T) {
	t.Parallel()

	opts := config.Defaults()
	opts.BuildPath = "/build"

	got := PreflightArgs(opts)
	want := []string{"clang-tidy", "-list-checks", "-p=/build", "-"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPreflightArgsWithChecksAndAlpha(t *testing.T) {
	t.Parallel()

	opts := config.Defaults()
	opts.AllowEnablingAlphaCheckers = true
	opts.BuildPath = "/build"
	opts.Checks = "-*,modernize-*"

	got := PreflightArgs(opts)
	want := []string{
		"clang-tidy",
		"-list-checks",
		"-allow-enabling-analyzer-alpha-checkers",
		"-p=/build",
		"-checks=-*,modernize-*",
		"-",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
