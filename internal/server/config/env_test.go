package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("BCRYPT_COST", "11")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("TODO_READ_POLICY", "public")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := &Config{}
	cfg.LoadDefaults(ModeDevelopment)
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseDSN)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, 2*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, ReadPolicyPublic, cfg.TodoReadPolicy)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestParseEnv_PortWithHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "0.0.0.0:5000")

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, "0.0.0.0:5000", cfg.HTTPAddr)
}

func TestParseEnv_InvalidValues(t *testing.T) {
	clearEnv(t)

	t.Setenv("BCRYPT_COST", "high")
	require.Error(t, parseEnv(&Config{}))

	t.Setenv("BCRYPT_COST", "")
	t.Setenv("TOKEN_TTL", "forever")
	require.Error(t, parseEnv(&Config{}))
}
