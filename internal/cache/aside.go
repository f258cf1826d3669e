package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"prepdeck-backend/pkg/logging"
)

// GetOrCompute is the cache-aside accessor: serve key from c when a
// well-formed entry exists, otherwise run compute against the
// authoritative store and best-effort populate the cache with its result.
//
// The cache is never a correctness dependency. A failed get and a
// malformed entry are both treated as a miss; a failed set is logged and
// dropped. Only a compute failure propagates, untouched, as the
// operation's own error. An empty compute result is a valid value and is
// cached like any other.
//
// At most one cache read and one cache write happen per call. The second
// return value reports whether the value came from the cache.
func GetOrCompute[T any](
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	compute func(ctx context.Context) (T, error),
) (T, bool, error) {
	logger := logging.L(ctx)

	raw, hit, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn("cache get failed, falling back to store",
			zap.String("cache_key", key),
			zap.Error(err),
		)
	}
	if hit && err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err != nil {
			// A corrupt entry is indistinguishable from a miss.
			logger.Warn("cache entry malformed, falling back to store",
				zap.String("cache_key", key),
				zap.Error(err),
			)
		} else {
			return cached, true, nil
		}
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	raw, err = json.Marshal(value)
	if err != nil {
		logger.Warn("cache marshal failed, skipping populate",
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return value, false, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		logger.Warn("cache set failed",
			zap.String("cache_key", key),
			zap.Error(err),
		)
	}
	return value, false, nil
}

// Invalidate deletes every given key, independently. One failed deletion
// is logged and must not stop the remaining ones, nor the mutation that
// triggered the invalidation. Call only after the store mutation has
// committed.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	logger := logging.L(ctx)
	for _, key := range keys {
		if err := c.Delete(ctx, key); err != nil {
			logger.Warn("cache invalidation failed",
				zap.String("cache_key", key),
				zap.Error(err),
			)
		}
	}
}
