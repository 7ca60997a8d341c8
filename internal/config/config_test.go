package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "AccountKit", cfg.AppName)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.SignupCacheTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenExpiry)
	assert.Equal(t, 8, cfg.ConfirmationCodeLength)
	assert.Equal(t, 32, cfg.ResetTokenLength)
	assert.Equal(t, "memory", cfg.SentinelBackend)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "https://accounts.example.com")
	t.Setenv("SIGNUP_CACHE_TTL", "0s")
	t.Setenv("RESET_TOKEN_EXPIRY", "30m")
	t.Setenv("CONFIRMATION_CODE_LENGTH", "12")
	t.Setenv("SENTINEL_BACKEND", "redis")

	cfg := Load()

	assert.Equal(t, time.Duration(0), cfg.SignupCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.ResetTokenExpiry)
	assert.Equal(t, 12, cfg.ConfirmationCodeLength)
	assert.Equal(t, "redis", cfg.SentinelBackend)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
	t.Setenv("SIGNUP_CACHE_TTL", "often")
	t.Setenv("CONFIRMATION_CODE_LENGTH", "many")

	cfg := Load()

	assert.Equal(t, time.Hour, cfg.SignupCacheTTL)
	assert.Equal(t, 8, cfg.ConfirmationCodeLength)
}
