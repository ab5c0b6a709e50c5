package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/lbs")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "lbs", cfg.NATSSubjectPrefix)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, 500, cfg.ListMaxLimit)
	assert.Equal(t, 10000, cfg.ExportMaxRows)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LIST_MAX_LIMIT", "100")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, 100, cfg.ListMaxLimit)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.OTelEnabled)
}

func TestFromEnvRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DB_DSN")
}

func TestFromEnvRequiresJWTSecret(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/lbs")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"DB_MAX_CONNS":         "many",
		"JWT_ACCESS_TOKEN_TTL": "forever",
		"OTEL_ENABLED":         "maybe",
		"LIST_MAX_LIMIT":       "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
