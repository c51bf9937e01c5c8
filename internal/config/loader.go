package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSettings reads a YAML settings file and overlays it on the built-in
// defaults. Fields absent from the file keep their default values.
func LoadSettings(path string) (*Options, error) {
	// Resolve to absolute path so errors and the history fingerprint are
	// unambiguous regardless of the working directory.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settings path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("settings file not found: %s\n"+
			"Hint: Check the path or drop the -settings flag", absPath)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("settings path is a directory, expected a file: %s", absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", absPath, err)
	}

	opts := Defaults()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", absPath, err)
	}
	opts.SettingsPath = absPath
	return opts, nil
}
