package cache

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"prepdeck-backend/internal/metrics"
	"prepdeck-backend/pkg/logging"
)

// LoggingCache wraps a Cache with structured logging and hit metrics.
type LoggingCache struct {
	inner Cache
}

func NewLoggingCache(inner Cache) Cache {
	return &LoggingCache{inner: inner}
}

func (c *LoggingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
		metrics.CacheHitsTotal.WithLabelValues(keyNamespace(key)).Inc()
	}

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Warn("cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Duration("ttl", ttl),
		zap.Float64("latency_ms", latencyMs),
	}

	logger := logging.L(ctx)
	if err != nil {
		logger.Warn("cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("cache_set", fields...)
	}
	return err
}

func (c *LoggingCache) Delete(ctx context.Context, key string) error {
	err := c.inner.Delete(ctx, key)
	logger := logging.L(ctx)
	if err != nil {
		logger.Warn("cache_delete", zap.String("cache_key", key), zap.Error(err))
	} else {
		logger.Debug("cache_delete", zap.String("cache_key", key))
	}
	return err
}

func (c *LoggingCache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.inner.Incr(ctx, key)
	if err != nil {
		logging.L(ctx).Warn("cache_incr", zap.String("cache_key", key), zap.Error(err))
	}
	return n, err
}

func (c *LoggingCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := c.inner.TTL(ctx, key)
	if err != nil {
		logging.L(ctx).Warn("cache_ttl", zap.String("cache_key", key), zap.Error(err))
	}
	return d, err
}

func (c *LoggingCache) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

// keyNamespace is the segment before the first ':', e.g. "questions".
func keyNamespace(key string) string {
	if i := strings.Index(key, ":"); i > 0 {
		return key[:i]
	}
	return key
}
