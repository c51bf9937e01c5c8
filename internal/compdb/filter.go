package compdb

import (
	"fmt"
	"regexp"
	"strings"
)

// nonSourceExtensions are always dropped: clang-tidy cannot analyze CUDA
// sources from a host compilation database.
var nonSourceExtensions = []string{".cu", ".cuh"}

// Filter applies the inclusion patterns (alternated into one regex, default
// match-everything), then the optional exclusion pattern, after dropping
// recognized non-source extensions. Pure function of its inputs.
func Filter(files, includePatterns []string, excludePattern string) ([]string, error) {
	if len(includePatterns) == 0 {
		includePatterns = []string{".*"}
	}
	includeRe, err := regexp.Compile(strings.Join(includePatterns, "|"))
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern: %w", err)
	}

	var excludeRe *regexp.Regexp
	if excludePattern != "" {
		excludeRe, err = regexp.Compile(excludePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid excluded-file pattern: %w", err)
		}
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		if hasNonSourceExtension(f) {
			continue
		}
		if !includeRe.MatchString(f) {
			continue
		}
		if excludeRe != nil && excludeRe.MatchString(f) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func hasNonSourceExtension(path string) bool {
	for _, ext := range nonSourceExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
