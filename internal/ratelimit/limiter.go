// Package ratelimit bounds how many operations a subject may perform
// inside a fixed window, with the counter delegated to the shared cache
// store so every instance of the service sees the same count.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"prepdeck-backend/internal/apperr"
	"prepdeck-backend/internal/cache"
	"prepdeck-backend/internal/metrics"
	"prepdeck-backend/pkg/logging"
)

// Limiter is a fixed-window counter. The window is anchored to the first
// request: the key is created with the window as its expiry and later
// increments leave that expiry untouched. An expired key means "no
// requests yet" and starts a fresh window.
type Limiter struct {
	cache     cache.Cache
	name      string // metric label
	namespace string // key namespace, e.g. "rate_limit"
	max       int64
	window    time.Duration
	message   string
}

type Config struct {
	Name      string
	Namespace string
	Max       int64
	Window    time.Duration
	// Message is the client-facing rejection text.
	Message string
}

func New(c cache.Cache, cfg Config) *Limiter {
	return &Limiter{
		cache:     c,
		name:      cfg.Name,
		namespace: cfg.Namespace,
		max:       cfg.Max,
		window:    cfg.Window,
		message:   cfg.Message,
	}
}

func (l *Limiter) key(subject string) string {
	return l.namespace + ":" + subject
}

// Allow admits or rejects one request for subject. A rejection is an
// *apperr.RateLimitError carrying the observed count and the window.
//
// The counter store is not a correctness dependency: if it is unreachable
// the limiter fails open and admits the request, logging the degraded
// condition.
func (l *Limiter) Allow(ctx context.Context, subject string) error {
	logger := logging.L(ctx)
	key := l.key(subject)

	count, err := l.currentCount(ctx, key)
	if err != nil {
		logger.Warn("rate limiter degraded, failing open",
			zap.String("limiter", l.name),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return nil
	}

	if count >= l.max {
		logger.Warn("rate limit exceeded",
			zap.String("limiter", l.name),
			zap.String("subject", subject),
			zap.Int64("count", count),
			zap.Duration("window", l.window),
		)
		metrics.RateLimitRejectionsTotal.WithLabelValues(l.name).Inc()
		return &apperr.RateLimitError{
			Message: l.message,
			Count:   count,
			Limit:   l.max,
			Window:  l.window,
		}
	}

	if count == 0 {
		// First request anchors the window.
		err = l.cache.Set(ctx, key, []byte("1"), l.window)
	} else {
		_, err = l.cache.Incr(ctx, key)
	}
	if err != nil {
		logger.Warn("rate limiter count update failed",
			zap.String("limiter", l.name),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
	return nil
}

// Status reports the subject's usage in the current window without
// consuming a slot. On a counter-store outage it reports zero usage,
// consistent with Allow failing open.
func (l *Limiter) Status(ctx context.Context, subject string) (used, remaining int64, resetIn time.Duration) {
	logger := logging.L(ctx)
	key := l.key(subject)

	used, err := l.currentCount(ctx, key)
	if err != nil {
		logger.Warn("rate limiter status degraded",
			zap.String("limiter", l.name),
			zap.String("subject", subject),
			zap.Error(err),
		)
		used = 0
	}

	resetIn, err = l.cache.TTL(ctx, key)
	if err != nil {
		resetIn = 0
	}

	remaining = l.max - used
	if remaining < 0 {
		remaining = 0
	}
	return used, remaining, resetIn
}

func (l *Limiter) Max() int64 { return l.max }

func (l *Limiter) currentCount(ctx context.Context, key string) (int64, error) {
	raw, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter not an integer: %w", err)
	}
	return n, nil
}
