package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("TUNELY_API_PG_DSN", "host=localhost user=test dbname=test")
	t.Setenv("TUNELY_API_DART_API_KEY", "test-key")

	cfg := &Config{}
	require.NoError(t, cfg.loadFromEnv())

	assert.Equal(t, "Tunely API", cfg.APIName)
	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, "https://opendart.fss.or.kr/api", cfg.DartBaseURL)
	assert.Equal(t, "https://finance.naver.com", cfg.NaverBaseURL)
	assert.Equal(t, "test-key", cfg.DartAPIKey)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("TUNELY_API_PG_DSN", "host=localhost user=test dbname=test")
	t.Setenv("TUNELY_API_DART_API_KEY", "test-key")
	t.Setenv("TUNELY_API_SERVER_PORT", "8080")
	t.Setenv("TUNELY_API_DART_BASE_URL", "http://localhost:9999")

	cfg := &Config{}
	require.NoError(t, cfg.loadFromEnv())

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:9999", cfg.DartBaseURL)
}

func TestLoadFromEnvMissingRequired(t *testing.T) {
	t.Setenv("TUNELY_API_PG_DSN", "")
	t.Setenv("TUNELY_API_DART_API_KEY", "test-key")

	cfg := &Config{}
	err := cfg.loadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUNELY_API_PG_DSN")
}

func TestStringMasksSensitiveValues(t *testing.T) {
	cfg := &Config{
		PostgresDsn:   "host=localhost password=supersecret",
		DartAPIKey:    "dart-api-key-value",
		RedisPassword: "redis-secret",
		ServerPort:    "3000",
	}

	out := cfg.String()
	assert.NotContains(t, out, "supersecret")
	assert.NotContains(t, out, "dart-api-key-value")
	assert.NotContains(t, out, "redis-secret")
	assert.Contains(t, out, "3000")
}
