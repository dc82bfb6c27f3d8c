// Package cache provides the prediction cache: a small in-process LRU,
// optionally backed by a shared redis tier, with request collapsing so a
// burst of identical predictions costs one model call.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// DefaultSize is the in-process LRU capacity when none is configured.
const DefaultSize = 1024

// PredictionCache stores opaque prediction payloads keyed by a stable
// request key.  The redis tier is best-effort: a redis failure falls through
// to the loader and is logged, never surfaced.
type PredictionCache struct {
	lru   *lru.Cache
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
	log   logging.Logger
}

// New builds a PredictionCache.  rdb may be nil for a purely in-process
// cache; ttl applies to the redis tier only (the LRU evicts by capacity).
func New(size int, rdb *redis.Client, ttl time.Duration, log logging.Logger) (*PredictionCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "create prediction lru")
	}
	return &PredictionCache{
		lru:   l,
		redis: rdb,
		ttl:   ttl,
		log:   log.Named("cache"),
	}, nil
}

// GetOrCompute returns the cached payload for key, running loader on a miss.
// Concurrent callers with the same key share one loader execution.
func (c *PredictionCache) GetOrCompute(ctx context.Context, key string, loader func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.lru.Get(key); ok {
		return v.([]byte), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.lru.Get(key); ok {
			return v.([]byte), nil
		}
		if b, ok := c.fromRedis(ctx, key); ok {
			c.lru.Add(key, b)
			return b, nil
		}
		b, err := loader()
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, b)
		c.toRedis(ctx, key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *PredictionCache) fromRedis(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil {
		return nil, false
	}
	b, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("redis read failed", logging.String("key", key), logging.Err(err))
		}
		return nil, false
	}
	return b, true
}

func (c *PredictionCache) toRedis(ctx context.Context, key string, b []byte) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.log.Warn("redis write failed", logging.String("key", key), logging.Err(err))
	}
}
