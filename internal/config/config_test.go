package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/search-service/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/jobmate")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "9083", cfg.GRPCPort)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 5, cfg.IndexMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.IndexRetryBaseDelay)
	assert.Equal(t, 5, cfg.ReclaimInterval)
	assert.Equal(t, 2*time.Minute, cfg.ReclaimMinIdle)
	assert.Equal(t, 30*time.Second, cfg.IndexAttemptTimeout)
	assert.Equal(t, 24*time.Hour, cfg.QueryEmbeddingTTL)
	assert.Equal(t, 10.0, cfg.EmbeddingRPS)
	assert.GreaterOrEqual(t, cfg.IndexWorkers, 1)
	assert.Empty(t, cfg.SkillsServiceURL)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_MissingRedisURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobmate")
	t.Setenv("REDIS_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SEARCH_PORT", "9000")
	t.Setenv("INDEX_WORKERS", "8")
	t.Setenv("INDEX_MAX_ATTEMPTS", "3")
	t.Setenv("INDEX_RETRY_BASE_DELAY", "2s")
	t.Setenv("INDEX_ATTEMPT_TIMEOUT", "45s")
	t.Setenv("EMBEDDING_RPS", "2.5")
	t.Setenv("SKILLS_SERVICE_URL", "http://skills:8080")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 8, cfg.IndexWorkers)
	assert.Equal(t, 3, cfg.IndexMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.IndexRetryBaseDelay)
	assert.Equal(t, 45*time.Second, cfg.IndexAttemptTimeout)
	assert.Equal(t, 2.5, cfg.EmbeddingRPS)
	assert.Equal(t, "http://skills:8080", cfg.SkillsServiceURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"INDEX_WORKERS":                  "zero",
		"INDEX_MAX_ATTEMPTS":             "0",
		"INDEX_RECLAIM_INTERVAL_MINUTES": "-1",
		"INDEX_RETRY_BASE_DELAY":         "soon",
		"INDEX_RECLAIM_MIN_IDLE":         "0s",
		"INDEX_ATTEMPT_TIMEOUT":          "-5s",
		"EMBEDDING_RPS":                  "-3",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
