package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache keys and TTLs for catalog reads that do not depend on the caller.
const (
	TagsCacheKey     = "catalog:tags"
	TrendingCacheKey = "catalog:trending"

	TagsCacheTTL     = 5 * time.Minute
	TrendingCacheTTL = time.Minute
)

// CacheObserver receives cache hit and miss events, keyed by cache key.
type CacheObserver interface {
	CacheHit(key string)
	CacheMiss(key string)
}

// CacheService provides a Redis cache-aside layer for catalog lookups.
type CacheService struct {
	rdb      *redis.Client
	observer CacheObserver
}

// NewCacheService creates a new CacheService. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (cache operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	rdb := connectRedis(redisURL)
	if rdb == nil {
		log.Info().Msg("redis: caching disabled")
		return &CacheService{}
	}
	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// NewCacheServiceWithClient wraps an existing client. A nil client disables caching.
func NewCacheServiceWithClient(rdb *redis.Client) *CacheService {
	return &CacheService{rdb: rdb}
}

func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL")
		return nil
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed")
		rdb.Close()
		return nil
	}
	return rdb
}

// SetObserver attaches a metrics observer.
func (c *CacheService) SetObserver(o CacheObserver) {
	c.observer = o
}

// Client returns the underlying Redis client (for health checks and the
// shared OTP store). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetJSON decodes the cached value for key into dst. It reports false on a
// miss or when caching is disabled.
func (c *CacheService) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.miss(key)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	c.hit(key)
	return true, nil
}

// SetJSON stores v under key.
func (c *CacheService) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Invalidate removes keys from cache.
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if c.rdb == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// InvalidateCatalog drops every catalog entry; called after admin video changes.
func (c *CacheService) InvalidateCatalog(ctx context.Context) {
	if err := c.Invalidate(ctx, TagsCacheKey, TrendingCacheKey); err != nil {
		log.Warn().Err(err).Msg("cache: catalog invalidation failed")
	}
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *CacheService) hit(key string) {
	if c.observer != nil {
		c.observer.CacheHit(key)
	}
}

func (c *CacheService) miss(key string) {
	if c.observer != nil {
		c.observer.CacheMiss(key)
	}
}
