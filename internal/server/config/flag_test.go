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
		name        string
		args        []string
		expected    *Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "db", "-k", "0123456789abcdef", "-s", "secret",
				"-m", "steamkey", "-l", "debug", "-u", "user", "-p", "password", "-b", "bucket",
				"-g", "us-west-1", "-e", "http://endpoint", "-i", "3s", "-t", "2m",
			},
			expected: &Config{
				EndpointAddrHTTP: "127.0.0.1:9090",
				DatabaseDSN:      "db",
				DBKey:            "0123456789abcdef",
				SharedSecret:     "secret",
				SteamAPIKey:      "steamkey",
				LogLevel:         "debug",
				S3RootUser:       "user",
				S3RootPassword:   "password",
				S3Bucket:         "bucket",
				S3Region:         "us-west-1",
				S3BaseEndpoint:   "http://endpoint",
				IdentityTimeout:  3 * time.Second,
				LogoURLValidity:  2 * time.Minute,
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-test.v", "-x", "1", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"},
		},
		{
			name:        "bad duration",
			args:        []string{"-i", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlagArgs(config, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlagArgs(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_KeepsExistingValues(t *testing.T) {
	var c Config
	c.LoadDefaults()
	want := c
	want.DatabaseDSN = "postgres://override"

	parseFlagArgs(&c, []string{"-d", "postgres://override"})

	assert.Empty(t, cmp.Diff(want, c))
}
