package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "hunter22")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "books.json", cfg.DataFile)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "hunter22")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RequiresSomeAdminPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	t.Setenv("STORE_BACKEND", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	t.Setenv("STORE_BACKEND", BackendRedis)
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_RPS", "5.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 5.5, cfg.RateLimitRPS)
}
