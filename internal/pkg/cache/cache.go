// Package cache stores short-lived upstream responses such as reference lists and listing pages
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/yigit/skillmart/internal/pkg/logger"
)

// Cache is a JSON value store with per-key expiry
type Cache interface {
	// Get decodes the value under key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisCache keeps values in redis under a key prefix
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a RedisCache
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Noop never stores anything
type Noop struct{}

// Get implements Cache
func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

// Set implements Cache
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

// loads collapses concurrent misses of the same key into one upstream call
var loads singleflight.Group

// Remember returns the cached value under key or loads, stores and returns it.
// Concurrent misses of one key share a single load. Cache failures are logged and never
// fail the call.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	if found {
		return cached, nil
	}

	v, err, _ := loads.Do(key, func() (interface{}, error) {
		value, err := load(ctx)
		if err != nil {
			return value, err
		}
		if err := c.Set(ctx, key, value, ttl); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
		return value, nil
	})
	value, _ := v.(T)
	return value, err
}
