package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "127.0.0.1:9090", "-t", "5", "call", "test_connection"},
			expected: &Config{ServerEndpointAddr: "127.0.0.1:9090", RequestTimeout: 5 * time.Second}},
		{name: "Test2 token", args: []string{"cmd", "-token", "jwt", "list"},
			expected: &Config{AccessToken: "jwt"}},
		{name: "Test3 incorrect timeout", args: []string{"cmd", "-a", "127.0.0.1:9090", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsTimeoutWithoutFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "topics"}

	config := &Config{RequestTimeout: 2500 * time.Millisecond}
	parseFlags(config)

	assert.Equal(t, 2500*time.Millisecond, config.RequestTimeout)
}
