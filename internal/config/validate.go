package config

import "fmt"

// Validate rejects option combinations clang-tidy itself would refuse, so
// the run fails before any work is dispatched rather than once per file.
func (o *Options) Validate() error {
	if o.ClangTidyBinary == "" {
		return fmt.Errorf("clang-tidy binary path is empty")
	}
	if o.Config != "" && o.ConfigFile != "" {
		return fmt.Errorf("use either -config or -config-file, not both")
	}
	if o.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", o.Jobs)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", o.Timeout)
	}
	return nil
}
