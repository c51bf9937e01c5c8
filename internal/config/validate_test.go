package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(o *Options) {},
		},
		{
			name: "config and config-file together",
			mutate: func(o *Options) {
				o.Config = "{Checks: '*'}"
				o.ConfigFile = "/repo/.clang-tidy"
			},
			wantErr: "not both",
		},
		{
			name:    "empty binary",
			mutate:  func(o *Options) { o.ClangTidyBinary = "" },
			wantErr: "binary path is empty",
		},
		{
			name:    "negative jobs",
			mutate:  func(o *Options) { o.Jobs = -1 },
			wantErr: "jobs must not be negative",
		},
		{
			name:    "negative timeout",
			mutate:  func(o *Options) { o.Timeout = -time.Second },
			wantErr: "timeout must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Defaults()
			tt.mutate(opts)
			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
