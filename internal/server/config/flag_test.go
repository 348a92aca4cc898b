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
		name      string
		args      []string
		expected  *Config
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret",
				"-t", "30", "-k", "5", "-p", "public", "-store", "memory",
			},
			expected: &Config{
				HTTPAddr:              "127.0.0.1:9090",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				TokenValidityDuration: 30 * time.Minute,
				BcryptCost:            5,
				TodoReadPolicy:        ReadPolicyPublic,
				StoreDriver:           StoreMemory,
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-test.v", "-c", "cfg.json", "-a", ":1"},
			expected: &Config{
				HTTPAddr: ":1",
			},
		},
		{
			name:      "bad int",
			args:      []string{"-k", "lots"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_TokenValidityUntouchedWithoutFlag(t *testing.T) {
	config := &Config{TokenValidityDuration: 90 * time.Second}
	require.NoError(t, parseFlags(config, []string{"-a", ":1"}))
	assert.Equal(t, 90*time.Second, config.TokenValidityDuration)
}
