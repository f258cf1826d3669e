package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prepdeck-backend/internal/apperr"
	"prepdeck-backend/internal/cache"
	"prepdeck-backend/internal/genai"
	"prepdeck-backend/internal/store"
	"prepdeck-backend/pkg/logging"
)

// Rounds that are conversational rather than technical; they must not
// carry a programming language.
var roundsWithoutLanguage = map[string]bool{
	"Behavioral Interview": true,
	"HR Round":             true,
	"Managerial Round":     true,
}

type fetchRoundsResponse struct {
	Success bool          `json:"success"`
	Rounds  []store.Round `json:"rounds"`
}

// FetchRounds handles GET /question/fetch-round?companyId=. The response
// is cached for an hour and invalidated when a round is created.
func (h *Handler) FetchRounds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID := r.URL.Query().Get("companyId")
	if companyID == "" {
		respondError(w, r, apperr.Validation("Company ID is required"))
		return
	}

	resp, _, err := cache.GetOrCompute(ctx, h.cache, cache.RoundsKey(companyID), h.cfg.RoundsTTL,
		func(ctx context.Context) (fetchRoundsResponse, error) {
			rounds, err := h.store.RoundsByCompany(ctx, companyID)
			if err != nil {
				return fetchRoundsResponse{}, apperr.Upstream("failed to fetch rounds", err)
			}
			if rounds == nil {
				rounds = []store.Round{}
			}
			return fetchRoundsResponse{Success: true, Rounds: rounds}, nil
		})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type fetchQuestionsResponse struct {
	Success   bool             `json:"success"`
	Questions []store.Question `json:"questions"`
}

// FetchQuestions handles GET /question/fetch-questions. Returns the most
// recent questions for a round, optionally filtered by language, capped
// at the fetch limit.
func (h *Handler) FetchQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companyID := q.Get("companyId")
	roundID := q.Get("roundId")
	language := q.Get("language")

	if companyID == "" || roundID == "" {
		respondError(w, r, apperr.Validation("Company ID and Round ID are required"))
		return
	}

	h.serveQuestions(w, r, store.QuestionFilter{
		CompanyID: companyID,
		RoundID:   roundID,
		Language:  language,
		Limit:     h.cfg.FetchLimit,
	})
}

// FetchQuestionsByRound handles GET /question/fetch-questions-by-round.
// Same read path without a limit, filterable by language and difficulty.
func (h *Handler) FetchQuestionsByRound(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companyID := q.Get("companyId")
	roundID := q.Get("roundId")

	if companyID == "" || roundID == "" {
		respondError(w, r, apperr.Validation("Company ID and Round ID are required"))
		return
	}

	h.serveQuestions(w, r, store.QuestionFilter{
		CompanyID:  companyID,
		RoundID:    roundID,
		Language:   q.Get("language"),
		Difficulty: q.Get("difficulty"),
	})
}

// serveQuestions is the shared cache-aside read behind both question
// listings. An empty result is a valid, cacheable value.
func (h *Handler) serveQuestions(w http.ResponseWriter, r *http.Request, f store.QuestionFilter) {
	key := cache.QuestionsReadKey(f.CompanyID, f.RoundID, f.Language, f.Difficulty)

	resp, _, err := cache.GetOrCompute(r.Context(), h.cache, key, h.cfg.QuestionsTTL,
		func(ctx context.Context) (fetchQuestionsResponse, error) {
			questions, err := h.store.Questions(ctx, f)
			if err != nil {
				return fetchQuestionsResponse{}, apperr.Upstream("failed to fetch questions", err)
			}
			if questions == nil {
				questions = []store.Question{}
			}
			return fetchQuestionsResponse{Success: true, Questions: questions}, nil
		})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type generateQuestionsRequest struct {
	UserID     string `json:"userId"`
	CompanyID  string `json:"companyId"`
	RoundID    string `json:"roundId"`
	RoundName  string `json:"roundName"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language,omitempty"`
}

type generateQuestionsResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	RoundID   string           `json:"roundId"`
	Language  string           `json:"language,omitempty"`
	Questions []store.Question `json:"questions"`
}

// GenerateQuestions handles POST /question/generate-questions: validate,
// spend a generation-quota slot, call the model, batch-insert the result
// and invalidate the stale question listings.
func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req generateQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.UserID == "" {
		respondError(w, r, apperr.Validation("User ID is required"))
		return
	}
	if req.CompanyID == "" || req.RoundID == "" || req.RoundName == "" || req.Difficulty == "" {
		respondError(w, r, apperr.Validation("All fields except language are required"))
		return
	}
	if roundsWithoutLanguage[req.RoundName] && req.Language != "" {
		respondError(w, r, apperr.Validation("%s does not require a programming language.", req.RoundName))
		return
	}
	if !roundsWithoutLanguage[req.RoundName] && req.Language == "" {
		respondError(w, r, apperr.Validation("%s requires a programming language.", req.RoundName))
		return
	}

	// Generation is the expensive path; the quota is checked before any
	// store or model work. A counter-store outage fails open.
	if err := h.quota.Allow(ctx, req.UserID); err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := h.store.RoundByID(ctx, req.CompanyID, req.RoundID); err != nil {
		if err == store.ErrNotFound {
			respondError(w, r, apperr.NotFound("Round not found for this company"))
		} else {
			respondError(w, r, apperr.Upstream("failed to load round", err))
		}
		return
	}

	generated, err := h.gen.GenerateQuestions(ctx, req.RoundName, req.Difficulty, req.Language, h.cfg.QuestionsPerGeneration)
	if err != nil {
		var malformed *genai.MalformedResponseError
		if errors.As(err, &malformed) {
			logger.Error("generation response not parseable",
				zap.String("raw_response", truncateForLog(malformed.Raw)),
				zap.Error(err),
			)
			respondError(w, r, apperr.MalformedGeneration("AI response was not valid JSON.", err))
			return
		}
		respondError(w, r, apperr.Upstream("Failed to generate questions", err))
		return
	}

	now := time.Now().UTC()
	questions := make([]store.Question, 0, len(generated))
	for _, g := range generated {
		questions = append(questions, store.Question{
			ID:          uuid.NewString(),
			CompanyID:   req.CompanyID,
			RoundID:     req.RoundID,
			Question:    g.Question,
			Answer:      g.Answer,
			Difficulty:  g.Difficulty,
			Language:    req.Language,
			CreatedAt:   now,
			GeneratedAt: now,
		})
	}

	if err := h.store.InsertQuestions(ctx, questions); err != nil {
		respondError(w, r, apperr.Upstream("failed to store generated questions", err))
		return
	}

	// Only after the batch committed: clear every listing this write made
	// stale.
	cache.Invalidate(ctx, h.cache,
		cache.QuestionKeyVariants(req.CompanyID, req.RoundID, req.Language, req.Difficulty)...)

	writeJSON(w, http.StatusOK, generateQuestionsResponse{
		Success:   true,
		Message:   "Questions generated successfully",
		RoundID:   req.RoundID,
		Language:  req.Language,
		Questions: questions,
	})
}

func truncateForLog(s string) string {
	const max = 500
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
