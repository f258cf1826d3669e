package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prepdeck-backend/internal/apperr"
	"prepdeck-backend/internal/cache"
)

func newTestLimiter(t *testing.T, max int64, window time.Duration) (*Limiter, *cache.MemoryCache) {
	t.Helper()
	c := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { c.Close() })

	l := New(c, Config{
		Name:      "test",
		Namespace: "rate_limit",
		Max:       max,
		Window:    window,
		Message:   "limit reached",
	})
	return l, c
}

func TestLimiter_RejectsAboveMax(t *testing.T) {
	l, _ := newTestLimiter(t, 5, 6*time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.Allow(ctx, "u1"); err != nil {
			t.Fatalf("request %d should be allowed: %v", i+1, err)
		}
	}

	err := l.Allow(ctx, "u1")
	var rl *apperr.RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("request 6 should be rejected, got %v", err)
	}
	if rl.Count != 5 {
		t.Fatalf("rejection should report count 5, got %d", rl.Count)
	}
	if rl.Limit != 5 {
		t.Fatalf("rejection should report limit 5, got %d", rl.Limit)
	}
	if rl.Window != 6*time.Hour {
		t.Fatalf("rejection should report the window, got %v", rl.Window)
	}

	// Another subject is unaffected.
	if err := l.Allow(ctx, "u2"); err != nil {
		t.Fatalf("different subject should be allowed: %v", err)
	}
}

func TestLimiter_WindowResets(t *testing.T) {
	l, _ := newTestLimiter(t, 2, 30*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Allow(ctx, "u1"); err != nil {
			t.Fatalf("request %d should be allowed: %v", i+1, err)
		}
	}
	if err := l.Allow(ctx, "u1"); err == nil {
		t.Fatalf("request above max should be rejected")
	}

	// After the window expires the counter starts fresh.
	time.Sleep(40 * time.Millisecond)

	if err := l.Allow(ctx, "u1"); err != nil {
		t.Fatalf("request after window expiry should be allowed: %v", err)
	}

	used, remaining, _ := l.Status(ctx, "u1")
	if used != 1 {
		t.Fatalf("fresh window should count 1, got %d", used)
	}
	if remaining != 1 {
		t.Fatalf("fresh window should have 1 remaining, got %d", remaining)
	}
}

func TestLimiter_WindowAnchoredToFirstRequest(t *testing.T) {
	l, c := newTestLimiter(t, 10, 50*time.Millisecond)
	ctx := context.Background()

	if err := l.Allow(ctx, "u1"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := l.Allow(ctx, "u1"); err != nil {
		t.Fatalf("second request failed: %v", err)
	}

	// The second request must not have extended the window.
	ttl, err := c.TTL(ctx, "rate_limit:u1")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl > 35*time.Millisecond {
		t.Fatalf("window was extended by a later request: ttl=%v", ttl)
	}
}

// downCache simulates a counter-store outage.
type downCache struct{}

var errDown = errors.New("counter store unreachable")

func (downCache) Get(context.Context, string) ([]byte, bool, error)      { return nil, false, errDown }
func (downCache) Set(context.Context, string, []byte, time.Duration) error { return errDown }
func (downCache) Delete(context.Context, string) error                   { return errDown }
func (downCache) Incr(context.Context, string) (int64, error)            { return 0, errDown }
func (downCache) TTL(context.Context, string) (time.Duration, error)     { return 0, errDown }
func (downCache) Ping(context.Context) error                             { return errDown }

func TestLimiter_FailsOpenOnOutage(t *testing.T) {
	l := New(downCache{}, Config{
		Name:      "test",
		Namespace: "rate_limit",
		Max:       1,
		Window:    time.Minute,
		Message:   "limit reached",
	})

	// Every request is admitted while the counter store is down.
	for i := 0; i < 3; i++ {
		if err := l.Allow(context.Background(), "u1"); err != nil {
			t.Fatalf("limiter must fail open on outage, got %v", err)
		}
	}

	used, remaining, resetIn := l.Status(context.Background(), "u1")
	if used != 0 || remaining != 1 || resetIn != 0 {
		t.Fatalf("degraded status should report zero usage, got used=%d remaining=%d resetIn=%v",
			used, remaining, resetIn)
	}
}

func TestSubject_Priority(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x?userId=query-user", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-User-ID", "header-user")

	if got := Subject(r); got != "header-user" {
		t.Fatalf("header should win, got %q", got)
	}

	r.Header.Del("X-User-ID")
	if got := Subject(r); got != "query-user" {
		t.Fatalf("query param should win over IP, got %q", got)
	}

	r = httptest.NewRequest(http.MethodPost, "/x", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	if got := Subject(r); got != "10.0.0.9" {
		t.Fatalf("expected remote host fallback, got %q", got)
	}
}

func TestMiddleware_RejectsWithJSON(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(l)(next)

	req := httptest.NewRequest(http.MethodPost, "/question/explain-questions", nil)
	req.Header.Set("X-User-ID", "u1")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("rejection must be JSON, got %q", ct)
	}
}
