package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-s", "/tmp/data.json"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"--config=alt.json", "-s", "x"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end is kept",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-l", "en"},
			allowed: []string{"-c", "-l"},
			want:    []string{"-c", "-l", "en"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-l", "pt", "-l", "es"},
			allowed: []string{"-l"},
			want:    []string{"-l", "pt", "-l", "es"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/p/short.json", ConfigPath([]string{"-c", "/p/short.json"}))
	assert.Equal(t, "/p/long.json", ConfigPath([]string{"-config", "/p/long.json", "-l", "en"}))
	assert.Equal(t, "/p/eq.json", ConfigPath([]string{"--config=/p/eq.json"}))
	assert.Equal(t, "/p/2.json", ConfigPath([]string{"-c", "/p/1.json", "-config", "/p/2.json"}))
	assert.Empty(t, ConfigPath([]string{"-x", "1"}))
}
