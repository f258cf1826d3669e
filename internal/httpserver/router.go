package httpserver

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"prepdeck-backend/internal/handlers"
	"prepdeck-backend/internal/metrics"
	"prepdeck-backend/internal/middleware"
	"prepdeck-backend/internal/ratelimit"
)

type Options struct {
	FrontendURL    string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	// APILimiter gates the explain route per identity.
	APILimiter *ratelimit.Limiter
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, h *handlers.Handler, opts Options) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 512 * 1024
	}

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.MaxBodySize(opts.MaxBodyBytes))

	if opts.FrontendURL != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{opts.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-ID"},
			AllowCredentials: true,
		}))
	}

	r.Route("/company", func(r chi.Router) {
		r.Post("/create-company", h.CreateCompany)
		r.Post("/create-round", h.CreateRound)
		r.Post("/fetch-company", h.FetchCompanies)
	})

	r.Route("/question", func(r chi.Router) {
		r.Post("/generate-questions", h.GenerateQuestions)
		r.Get("/fetch-questions", h.FetchQuestions)
		r.Get("/fetch-questions-by-round", h.FetchQuestionsByRound)
		r.Get("/fetch-round", h.FetchRounds)
		r.With(ratelimit.Middleware(opts.APILimiter)).Post("/explain-questions", h.ExplainQuestion)
		r.Post("/track-generation-limit", h.TrackGenerationLimit)
		r.Delete("/delete-questions-by-roundId", h.DeleteQuestionsByRound)
		r.Delete("/delete-questions-by-language", h.DeleteQuestionsByLanguage)
		r.Delete("/delete-questions-by-difficulty", h.DeleteQuestionsByDifficulty)
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())
}
