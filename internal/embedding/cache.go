package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores query embeddings by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error
}

// CacheKey identifies a query embedding by model and whitespace-normalized
// term.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(strings.Join(strings.Fields(text), " ")))
	return "search:qemb:" + model + ":" + hex.EncodeToString(sum[:])
}

// ─── Redis cache ─────────────────────────────────────────────────────────────

// RedisCache keeps vectors as little-endian float32 bytes.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	vec, err := decodeVector(raw)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, encodeVector(vec), ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("cached vector has %d bytes, not a multiple of 4", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec, nil
}

// ─── Cached embedder ─────────────────────────────────────────────────────────

// Cached memoizes embeddings of search terms. Cache failures are logged and
// bypassed.
type Cached struct {
	next   Embedder
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps next with cache. Entries expire after ttl.
func NewCached(next Embedder, cache Cache, ttl time.Duration) *Cached {
	return &Cached{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: slog.Default().With("component", "query-embedding-cache"),
	}
}

func (c *Cached) Model() string { return c.next.Model() }

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.next.Model(), text)

	vec, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("query embedding cache read failed", "err", err)
	case ok:
		return vec, nil
	}

	vec, err = c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, vec, c.ttl); err != nil {
		c.logger.Warn("query embedding cache write failed", "err", err)
	}
	return vec, nil
}
