// internal/backend/cache/cache.go

// Package cache decorates a Backend with a Redis candidate cache.
// Cache failures never fail the call; they degrade to pass-through.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/models"
)

type Backend struct {
	inner backend.Backend
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func Wrap(inner backend.Backend, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Backend {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Backend{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.WithFields(map[string]interface{}{"cache": "redis", "backend": inner.Name()}),
	}
}

func (b *Backend) Name() string { return b.inner.Name() }

func (b *Backend) Search(ctx context.Context, q *models.SearchQuery) ([]backend.Candidate, error) {
	key := cacheKey(b.inner.Name(), q)

	val, err := b.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var candidates []backend.Candidate
		if jsonErr := json.Unmarshal([]byte(val), &candidates); jsonErr == nil {
			return candidates, nil
		}
		// stale or corrupt entry; fall through to the backend
		b.rdb.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		b.log.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
	}

	candidates, err := b.inner.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(candidates); jsonErr == nil {
		if setErr := b.rdb.Set(ctx, key, data, b.ttl).Err(); setErr != nil {
			b.log.Warn("cache write failed", map[string]interface{}{"error": setErr.Error()})
		}
	}
	return candidates, nil
}

func (b *Backend) HealthCheck(ctx context.Context) error {
	return b.inner.HealthCheck(ctx)
}

// cacheKey derives a stable key from the backend name and the full
// query; struct field order makes the JSON encoding deterministic.
func cacheKey(name string, q *models.SearchQuery) string {
	data, _ := json.Marshal(q)
	sum := sha256.Sum256(append([]byte(name+":"), data...))
	return "candidates:" + hex.EncodeToString(sum[:])
}
