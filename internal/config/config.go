// Package config loads service configuration from the environment, with a
// .env file honored in development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	FrontendURL string

	CacheBackend string // "memory" or "redis"
	CachePrefix  string
	RedisAddr    string
	RedisPass    string

	MongoURI      string
	MongoDatabase string

	GenBaseURL string
	GenAPIKey  string
	GenModel   string

	// Per-route request limiter (explain endpoint).
	APIRateMax    int64
	APIRateWindow time.Duration
	// Generation-quota limiter.
	QuotaMax    int64
	QuotaWindow time.Duration

	RequestTimeout time.Duration
}

// Load reads the environment. A missing .env is fine; real env vars win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        getenv("PORT", "5000"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),

		CacheBackend: getenv("CACHE_BACKEND", "redis"),
		CachePrefix:  getenv("CACHE_PREFIX", "prepdeck"),
		RedisAddr:    getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),

		MongoURI:      getenv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getenv("MONGO_DATABASE", "prepdeck"),

		GenBaseURL: getenv("GEN_BASE_URL", "https://api.openai.com"),
		GenAPIKey:  os.Getenv("GEN_API_KEY"),
		GenModel:   getenv("GEN_MODEL", "gpt-4o-mini"),

		APIRateMax:    getint64("API_RATE_MAX", 10),
		APIRateWindow: getduration("API_RATE_WINDOW", time.Minute),
		QuotaMax:      getint64("GENERATION_QUOTA_MAX", 5),
		QuotaWindow:   getduration("GENERATION_QUOTA_WINDOW", 6*time.Hour),

		RequestTimeout: getduration("REQUEST_TIMEOUT", 2*time.Minute),
	}
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
