package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "defaults", args: []string{"cmd", "list"}, expectPanic: false,
			expected: &Config{MaxUploadBytes: DefaultMaxUploadBytes}},
		{name: "all flags", args: []string{"cmd", "-no-color", "-max-upload", "1024", "-meta", "sqlite", "upload", "a.txt"}, expectPanic: false,
			expected: &Config{NoColor: true, MaxUploadBytes: 1024}},
		{name: "bad size", args: []string{"cmd", "-max-upload", "lots"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := os.Args
			t.Cleanup(func() { os.Args = orig })
			os.Args = tt.args

			config := &Config{}
			config.LoadDefaults()

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestValuedFlags(t *testing.T) {
	flags := ValuedFlags()
	assert.Contains(t, flags, "-max-upload")
	assert.Contains(t, flags, "-c")
	assert.Contains(t, flags, "-meta")
	assert.NotContains(t, flags, "-no-color")
}
