package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"prepdeck-backend/internal/apperr"
	"prepdeck-backend/internal/cache"
	"prepdeck-backend/internal/genai"
	"prepdeck-backend/pkg/logging"
)

type explainQuestionRequest struct {
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
}

type explainQuestionResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Explanation genai.Explanation `json:"explanation"`
}

// ExplainQuestion handles POST /question/explain-questions. Explanations
// are keyed by question id, so a repeat request for the same question is
// a cache hit and never reaches the model.
func (h *Handler) ExplainQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req explainQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.QuestionID == "" || req.Question == "" {
		respondError(w, r, apperr.Validation("Question ID and question are required."))
		return
	}
	if req.UserID == "" {
		respondError(w, r, apperr.Validation("User ID is required"))
		return
	}

	resp, _, err := cache.GetOrCompute(ctx, h.cache, cache.ExplanationKey(req.QuestionID), h.cfg.ExplanationTTL,
		func(ctx context.Context) (explainQuestionResponse, error) {
			explanation, err := h.gen.Explain(ctx, req.Question)
			if err != nil {
				var malformed *genai.MalformedResponseError
				if errors.As(err, &malformed) {
					logger.Error("explanation response not parseable",
						zap.String("raw_response", truncateForLog(malformed.Raw)),
						zap.Error(err),
					)
					return explainQuestionResponse{}, apperr.MalformedGeneration("Failed to generate explanation.", err)
				}
				return explainQuestionResponse{}, apperr.Upstream("Failed to generate explanation.", err)
			}
			return explainQuestionResponse{
				Success:     true,
				Message:     "Explanation generated successfully.",
				Explanation: explanation,
			}, nil
		})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type trackLimitRequest struct {
	UserID string `json:"userId"`
}

type trackLimitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Used      int64  `json:"used"`
	Remaining int64  `json:"remaining"`
	ResetIn   string `json:"resetIn"`
}

// TrackGenerationLimit handles POST /question/track-generation-limit:
// reports quota usage without consuming a slot.
func (h *Handler) TrackGenerationLimit(w http.ResponseWriter, r *http.Request) {
	var req trackLimitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.UserID == "" {
		respondError(w, r, apperr.Validation("User ID is required"))
		return
	}

	used, remaining, resetIn := h.quota.Status(r.Context(), req.UserID)

	writeJSON(w, http.StatusOK, trackLimitResponse{
		Success:   true,
		Message:   "Generation limit status retrieved successfully",
		Used:      used,
		Remaining: remaining,
		ResetIn:   humanizeDuration(resetIn),
	})
}

// humanizeDuration renders a reset countdown for clients: "Now" when the
// window already lapsed, otherwise the largest round unit.
func humanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "Now"
	}
	switch {
	case d >= time.Hour:
		hours := int(d.Round(time.Hour) / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	case d >= time.Minute:
		minutes := int(d.Round(time.Minute) / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	default:
		seconds := int(d.Round(time.Second) / time.Second)
		if seconds <= 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}
}
