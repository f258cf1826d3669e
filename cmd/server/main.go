package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"prepdeck-backend/internal/cache"
	"prepdeck-backend/internal/config"
	"prepdeck-backend/internal/genai"
	"prepdeck-backend/internal/handlers"
	"prepdeck-backend/internal/httpserver"
	"prepdeck-backend/internal/metrics"
	"prepdeck-backend/internal/ratelimit"
	"prepdeck-backend/internal/store/mongodb"
	"prepdeck-backend/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := config.Load()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("gen_base_url", cfg.GenBaseURL),
		zap.String("gen_model", cfg.GenModel),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})

		// The cache is fail-open at request time, but a misconfigured
		// address should still fail fast at startup.
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	}

	// ----- Cache -----
	store := cache.New(cache.Config{
		Backend: cfg.CacheBackend,
		Prefix:  cfg.CachePrefix,
	}, redisClient)
	store = cache.NewLoggingCache(store)

	// ----- Document store -----
	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	docStore, err := mongodb.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		logger.Error("mongo connection failed", zap.Error(err))
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = docStore.Close(ctx)
	}()
	logger.Info("mongo connection established", zap.String("database", cfg.MongoDatabase))

	// ----- Generation client -----
	if cfg.GenAPIKey == "" {
		return fmt.Errorf("GEN_API_KEY is required")
	}
	generator, err := genai.NewClient(genai.Config{
		BaseURL: cfg.GenBaseURL,
		APIKey:  cfg.GenAPIKey,
		Model:   cfg.GenModel,
	}, logger)
	if err != nil {
		return err
	}

	// ----- Rate limiters -----
	apiLimiter := ratelimit.New(store, ratelimit.Config{
		Name:      "api",
		Namespace: "rate-limit-for-api",
		Max:       cfg.APIRateMax,
		Window:    cfg.APIRateWindow,
		Message:   "Too many requests, slow down!",
	})
	quotaLimiter := ratelimit.New(store, ratelimit.Config{
		Name:      "generation_quota",
		Namespace: "rate_limit",
		Max:       cfg.QuotaMax,
		Window:    cfg.QuotaWindow,
		Message: fmt.Sprintf("You have reached the limit of %d requests per %s. Please try again later.",
			cfg.QuotaMax, cfg.QuotaWindow),
	})

	// ----- Handlers + router -----
	h := handlers.New(docStore, store, generator, quotaLimiter, handlers.Config{})

	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, h, httpserver.Options{
		FrontendURL:    cfg.FrontendURL,
		RequestTimeout: cfg.RequestTimeout,
		APILimiter:     apiLimiter,
	})

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
