package handlers

import (
	"time"

	"prepdeck-backend/internal/cache"
	"prepdeck-backend/internal/genai"
	"prepdeck-backend/internal/ratelimit"
	"prepdeck-backend/internal/store"
)

// Config carries the per-endpoint cache TTLs and generation knobs.
type Config struct {
	QuestionsTTL   time.Duration // default 30m
	RoundsTTL      time.Duration // default 1h
	ExplanationTTL time.Duration // default 30m

	// FetchLimit caps the unfiltered question listing.
	FetchLimit int64 // default 20
	// QuestionsPerGeneration is the batch size asked of the model.
	QuestionsPerGeneration int // default 25
}

func (c Config) withDefaults() Config {
	if c.QuestionsTTL <= 0 {
		c.QuestionsTTL = 30 * time.Minute
	}
	if c.RoundsTTL <= 0 {
		c.RoundsTTL = time.Hour
	}
	if c.ExplanationTTL <= 0 {
		c.ExplanationTTL = 30 * time.Minute
	}
	if c.FetchLimit <= 0 {
		c.FetchLimit = 20
	}
	if c.QuestionsPerGeneration <= 0 {
		c.QuestionsPerGeneration = 25
	}
	return c
}

// Handler holds every dependency the endpoints orchestrate.
type Handler struct {
	store store.Store
	cache cache.Cache
	gen   genai.Generator
	// quota is the generation-quota limiter (5 per 6h per user), distinct
	// from the per-route request limiter mounted as middleware.
	quota *ratelimit.Limiter
	cfg   Config
}

func New(s store.Store, c cache.Cache, gen genai.Generator, quota *ratelimit.Limiter, cfg Config) *Handler {
	return &Handler{
		store: s,
		cache: c,
		gen:   gen,
		quota: quota,
		cfg:   cfg.withDefaults(),
	}
}
