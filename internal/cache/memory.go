package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process Cache for development and tests. Expired
// entries are dropped lazily on read and swept by a background janitor.
type MemoryCache struct {
	mu              sync.RWMutex
	items           map[string]memoryEntry
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
	cleanupInterval time.Duration
}

func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	c := &MemoryCache{
		items:           make(map[string]memoryEntry),
		stopCleanup:     make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}
	go c.cleanupExpired()
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	now := time.Now()
	if entry.expired(now) {
		c.mu.Lock()
		if e, exists := c.items[key]; exists && e.expired(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil
	}

	// Copy to decouple from the caller's buffer.
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	c.items[key] = memoryEntry{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Incr mirrors the Redis INCR contract: a missing or expired key is
// created at 1 with no expiry, an existing one keeps its expiry.
func (c *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok || entry.expired(time.Now()) {
		c.items[key] = memoryEntry{value: []byte("1")}
		return 1, nil
	}

	n, err := strconv.ParseInt(string(entry.value), 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	entry.value = []byte(strconv.FormatInt(n, 10))
	c.items[key] = entry
	return n, nil
}

func (c *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || entry.expiresAt.IsZero() {
		return 0, nil
	}
	d := time.Until(entry.expiresAt)
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, v := range c.items {
				if v.expired(now) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the janitor. Call on shutdown or in tests.
func (c *MemoryCache) Close() error {
	c.cleanupOnce.Do(func() {
		close(c.stopCleanup)
	})
	return nil
}

// Len returns the number of items currently held.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
