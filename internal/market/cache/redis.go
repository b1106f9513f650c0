package cache

import (
	"context"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/pkg/redis"
)

// Redis stores provider payloads in Redis, sharing one cache across
// processes. Expiry is native, so CleanExpired has nothing to do.
type Redis struct {
	cache *redis.Cache
}

// NewRedis wraps a Redis cache as a Store.
func NewRedis(cache *redis.Cache) *Redis {
	return &Redis{cache: cache}
}

// Get decodes the entry for key into dest.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return r.cache.Get(ctx, key, dest)
}

// Set stores value under key for ttl.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.cache.Set(ctx, key, value, ttl)
}

// Delete removes the entry for key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}

// CleanExpired is a no-op; Redis expires entries itself.
func (r *Redis) CleanExpired(ctx context.Context) (int, error) {
	return 0, nil
}
