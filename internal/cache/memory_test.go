package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	defer c.Close()

	ctx := context.Background()
	key := "test:key"
	val := []byte("hello")

	if err := c.Set(ctx, key, val, 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit immediately after Set")
	}
	if string(got) != "hello" {
		t.Fatalf("expected 'hello', got %q", got)
	}

	// Wait for TTL to expire
	time.Sleep(30 * time.Millisecond)

	_, hit, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after TTL failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}

func TestMemoryCache_Incr(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()

	n, err := c.Incr(ctx, "counter")
	if err != nil {
		t.Fatalf("Incr failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 on first incr, got %d", n)
	}

	n, err = c.Incr(ctx, "counter")
	if err != nil {
		t.Fatalf("Incr failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 on second incr, got %d", n)
	}
}

func TestMemoryCache_IncrKeepsExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "counter", []byte("1"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := c.Incr(ctx, "counter"); err != nil {
		t.Fatalf("Incr failed: %v", err)
	}

	ttl, err := c.TTL(ctx, "counter")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > 50*time.Millisecond {
		t.Fatalf("expected expiry preserved after incr, got %v", ttl)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatalf("expected miss after delete")
	}

	// Absent key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
}
