// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits.
package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the search service.
type Config struct {
	Port        string
	GRPCPort    string
	DatabaseURL string
	RedisURL    string
	DBMaxConns  int32

	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingRPS        float64
	QueryEmbeddingTTL   time.Duration
	SkillsServiceURL    string
	VocabularyPath      string
	IndexWorkers        int
	IndexMaxAttempts    int
	IndexRetryBaseDelay time.Duration
	IndexAttemptTimeout time.Duration
	ReclaimInterval     int // minutes between reclaim sweeps
	ReclaimMinIdle      time.Duration
}

func defaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SEARCH_PORT", "8083")
	v.SetDefault("SEARCH_GRPC_PORT", "9083")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("EMBEDDING_BASE_URL", "http://localhost:11434/v1")
	v.SetDefault("EMBEDDING_MODEL", "nomic-embed-text")
	v.SetDefault("EMBEDDING_API_KEY", "none")
	v.SetDefault("EMBEDDING_RPS", 10.0)
	v.SetDefault("QUERY_EMBEDDING_CACHE_TTL", "24h")
	v.SetDefault("INDEX_WORKERS", defaultWorkers())
	v.SetDefault("INDEX_MAX_ATTEMPTS", 5)
	v.SetDefault("INDEX_RETRY_BASE_DELAY", "500ms")
	v.SetDefault("INDEX_ATTEMPT_TIMEOUT", "30s")
	v.SetDefault("INDEX_RECLAIM_INTERVAL_MINUTES", 5)
	v.SetDefault("INDEX_RECLAIM_MIN_IDLE", "2m")
	return v
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	v := newViper()

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := v.GetString("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	cfg := &Config{
		Port:             v.GetString("SEARCH_PORT"),
		GRPCPort:         v.GetString("SEARCH_GRPC_PORT"),
		DatabaseURL:      dbURL,
		RedisURL:         redisURL,
		EmbeddingBaseURL: v.GetString("EMBEDDING_BASE_URL"),
		EmbeddingModel:   v.GetString("EMBEDDING_MODEL"),
		EmbeddingAPIKey:  v.GetString("EMBEDDING_API_KEY"),
		SkillsServiceURL: v.GetString("SKILLS_SERVICE_URL"),
		VocabularyPath:   v.GetString("VOCABULARY_PATH"),
	}

	maxConns, err := positiveInt(v, "DB_MAX_CONNS")
	if err != nil {
		return nil, err
	}
	cfg.DBMaxConns = int32(maxConns)

	if cfg.IndexWorkers, err = positiveInt(v, "INDEX_WORKERS"); err != nil {
		return nil, err
	}
	if cfg.IndexMaxAttempts, err = positiveInt(v, "INDEX_MAX_ATTEMPTS"); err != nil {
		return nil, err
	}
	if cfg.ReclaimInterval, err = positiveInt(v, "INDEX_RECLAIM_INTERVAL_MINUTES"); err != nil {
		return nil, err
	}
	if cfg.IndexRetryBaseDelay, err = positiveDuration(v, "INDEX_RETRY_BASE_DELAY"); err != nil {
		return nil, err
	}
	if cfg.ReclaimMinIdle, err = positiveDuration(v, "INDEX_RECLAIM_MIN_IDLE"); err != nil {
		return nil, err
	}
	if cfg.IndexAttemptTimeout, err = positiveDuration(v, "INDEX_ATTEMPT_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.QueryEmbeddingTTL, err = positiveDuration(v, "QUERY_EMBEDDING_CACHE_TTL"); err != nil {
		return nil, err
	}

	rps, err := castFloat(v, "EMBEDDING_RPS")
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("EMBEDDING_RPS must be a positive number, got %q", v.GetString("EMBEDDING_RPS"))
	}
	cfg.EmbeddingRPS = rps

	return cfg, nil
}

// positiveInt parses key strictly; viper's GetInt silently returns 0 for
// garbage, which would hide typos in deployment manifests.
func positiveInt(v *viper.Viper, key string) (int, error) {
	raw := v.GetString(key)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func positiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func castFloat(v *viper.Viper, key string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
}
