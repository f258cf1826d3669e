package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// brokenCache simulates a cache-store outage: every operation fails.
type brokenCache struct{}

var errCacheDown = errors.New("cache unreachable")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error { return errCacheDown }
func (brokenCache) Delete(context.Context, string) error                     { return errCacheDown }
func (brokenCache) Incr(context.Context, string) (int64, error)              { return 0, errCacheDown }
func (brokenCache) TTL(context.Context, string) (time.Duration, error)       { return 0, errCacheDown }
func (brokenCache) Ping(context.Context) error                               { return errCacheDown }

type listPayload struct {
	Items []string `json:"items"`
}

func TestGetOrCompute_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	computeCalls := 0
	compute := func(context.Context) (listPayload, error) {
		computeCalls++
		return listPayload{Items: []string{"a", "b"}}, nil
	}

	got, hit, err := GetOrCompute(ctx, c, "list:1", time.Minute, compute)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if hit {
		t.Fatalf("first call should be a miss")
	}
	if len(got.Items) != 2 {
		t.Fatalf("unexpected payload: %#v", got)
	}

	got, hit, err = GetOrCompute(ctx, c, "list:1", time.Minute, compute)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !hit {
		t.Fatalf("second call should hit the cache")
	}
	if len(got.Items) != 2 {
		t.Fatalf("cached payload differs: %#v", got)
	}
	if computeCalls != 1 {
		t.Fatalf("compute should run once, ran %d times", computeCalls)
	}
}

func TestGetOrCompute_FailOpen(t *testing.T) {
	// With the cache down, the result must equal the no-cache path.
	ctx := context.Background()
	want := listPayload{Items: []string{"only"}}
	compute := func(context.Context) (listPayload, error) { return want, nil }

	got, hit, err := GetOrCompute[listPayload](ctx, brokenCache{}, "list:1", time.Minute, compute)
	if err != nil {
		t.Fatalf("cache outage must not fail the operation: %v", err)
	}
	if hit {
		t.Fatalf("broken cache cannot produce a hit")
	}
	if len(got.Items) != 1 || got.Items[0] != "only" {
		t.Fatalf("result differs from fallback: %#v", got)
	}
}

func TestGetOrCompute_MalformedEntryIsMiss(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "list:1", []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	computeCalls := 0
	got, hit, err := GetOrCompute(ctx, c, "list:1", time.Minute, func(context.Context) (listPayload, error) {
		computeCalls++
		return listPayload{Items: []string{"fresh"}}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("malformed entry must count as a miss")
	}
	if computeCalls != 1 {
		t.Fatalf("fallback should have run")
	}
	if got.Items[0] != "fresh" {
		t.Fatalf("unexpected payload: %#v", got)
	}

	// The malformed entry was overwritten by the recompute.
	_, hit, _ = GetOrCompute(ctx, c, "list:1", time.Minute, func(context.Context) (listPayload, error) {
		t.Fatalf("compute must not run after repopulation")
		return listPayload{}, nil
	})
	if !hit {
		t.Fatalf("expected hit after repopulation")
	}
}

func TestGetOrCompute_EmptyResultIsCacheable(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	computeCalls := 0
	compute := func(context.Context) (listPayload, error) {
		computeCalls++
		return listPayload{Items: []string{}}, nil
	}

	if _, _, err := GetOrCompute(ctx, c, "list:empty", time.Minute, compute); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	_, hit, err := GetOrCompute(ctx, c, "list:empty", time.Minute, compute)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !hit {
		t.Fatalf("empty result must be cached like any other value")
	}
	if computeCalls != 1 {
		t.Fatalf("compute ran %d times, want 1", computeCalls)
	}
}

func TestGetOrCompute_FallbackErrorPropagates(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	wantErr := errors.New("store down")
	_, _, err := GetOrCompute[listPayload](context.Background(), c, "list:1", time.Minute,
		func(context.Context) (listPayload, error) {
			return listPayload{}, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fallback error, got %v", err)
	}

	// A failed fallback must not populate the cache.
	if _, hit, _ := c.Get(context.Background(), "list:1"); hit {
		t.Fatalf("cache must stay empty after fallback failure")
	}
}

// flakyDeleteCache fails deletion of one specific key and records the rest.
type flakyDeleteCache struct {
	*MemoryCache
	failKey string
	deleted []string
}

func (c *flakyDeleteCache) Delete(ctx context.Context, key string) error {
	if key == c.failKey {
		return errCacheDown
	}
	c.deleted = append(c.deleted, key)
	return c.MemoryCache.Delete(ctx, key)
}

func TestInvalidate_ContinuesPastFailures(t *testing.T) {
	mem := NewMemoryCache(time.Minute)
	defer mem.Close()

	c := &flakyDeleteCache{MemoryCache: mem, failKey: "b"}

	Invalidate(context.Background(), c, "a", "b", "c")

	if len(c.deleted) != 2 || c.deleted[0] != "a" || c.deleted[1] != "c" {
		t.Fatalf("expected deletion of remaining keys despite failure, got %v", c.deleted)
	}
}
