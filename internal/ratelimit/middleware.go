package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// Subject identifies who a request is counted against: an explicit user id
// when the client sends one, otherwise the client network address.
// Priority: X-User-ID header, userId query parameter, remote IP.
func Subject(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-User-ID")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("userId")); v != "" {
		return v
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware gates a route with the limiter. Rejections are JSON, matching
// the rest of the API surface.
func Middleware(l *Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := l.Allow(r.Context(), Subject(r)); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"error":"Too many requests, slow down!"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
