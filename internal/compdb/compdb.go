// Package compdb locates and loads clang compilation databases.
package compdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseFile is the canonical compilation database file name.
const DatabaseFile = "compile_commands.json"

// Entry is one translation unit in the database. Fields we do not need
// (command, arguments, output) are ignored on decode.
type Entry struct {
	Directory string `json:"directory"`
	File      string `json:"file"`
}

// Discover walks up from startDir until a directory containing
// compile_commands.json is found, mirroring clang tooling's own lookup.
// Fails once the filesystem root is reached.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, DatabaseFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find compilation database above %s", startDir)
		}
		dir = parent
	}
}

// Load reads the compilation database under buildPath and returns the
// absolute path of every listed file, de-duplicated, in first-seen order.
// Relative paths are joined with the entry's directory and normalized.
func Load(buildPath string) ([]string, error) {
	dbPath := filepath.Join(buildPath, DatabaseFile)
	data, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("read compilation database: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse compilation database %s: %w", dbPath, err)
	}

	seen := make(map[string]bool, len(entries))
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		path := makeAbsolute(e.File, e.Directory)
		if seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files, nil
}

func makeAbsolute(file, directory string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Clean(filepath.Join(directory, file))
}
