package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-s", "/tmp/data.json", "-l", "en", "-t", "5", "-v", "debug", "-log-format", "json"},
			expected: &Config{StorePath: "/tmp/data.json", Language: "en", RequestTimeout: 5 * time.Second,
				LogLevel: "debug", LogFormat: "json"},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"-x", "1", "-l", "es", "--verbose"},
			expected: &Config{Language: "es", RequestTimeout: 15 * time.Second},
		},
		{
			name:     "timeout untouched when absent",
			args:     []string{},
			expected: &Config{RequestTimeout: 15 * time.Second},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{RequestTimeout: 15 * time.Second}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
