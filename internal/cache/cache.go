package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the key-value contract shared by the response cache and the
// rate-limit counters. Implemented by the memory backend (dev/tests) and
// the Redis backend (prod). Every operation is best-effort from the
// caller's point of view: errors are logged and absorbed, never allowed
// to fail the request they accelerate.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the integer at key, creating it at 1
	// with no expiry when absent.
	Incr(ctx context.Context, key string) (int64, error)
	// TTL reports the remaining lifetime of key; 0 when the key is absent
	// or has no expiry set.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}

type Config struct {
	Backend string // "memory" or "redis"
	Prefix  string
}

// New selects a backend from config. The redis client may be nil when the
// backend is "memory".
func New(cfg Config, redisClient *redis.Client) Cache {
	switch cfg.Backend {
	case "redis":
		return NewRedisCache(redisClient, cfg.Prefix)
	default:
		return NewMemoryCache(5 * time.Minute)
	}
}
