package handlers

import (
	"net/http"

	"prepdeck-backend/internal/apperr"
	"prepdeck-backend/internal/cache"
	"prepdeck-backend/internal/store"
)

type deleteQuestionsRequest struct {
	CompanyID  string `json:"companyId"`
	RoundID    string `json:"roundId"`
	Language   string `json:"language,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type deleteQuestionsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// DeleteQuestionsByRound handles DELETE /question/delete-questions-by-roundId.
func (h *Handler) DeleteQuestionsByRound(w http.ResponseWriter, r *http.Request) {
	var req deleteQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.CompanyID == "" || req.RoundID == "" {
		respondError(w, r, apperr.Validation("Round ID and Company ID are required"))
		return
	}

	h.deleteQuestions(w, r, store.QuestionFilter{
		CompanyID: req.CompanyID,
		RoundID:   req.RoundID,
	}, "No questions found for this round")
}

// DeleteQuestionsByLanguage handles DELETE /question/delete-questions-by-language.
func (h *Handler) DeleteQuestionsByLanguage(w http.ResponseWriter, r *http.Request) {
	var req deleteQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.CompanyID == "" || req.RoundID == "" || req.Language == "" {
		respondError(w, r, apperr.Validation("Company ID, Round ID and Language are required"))
		return
	}

	h.deleteQuestions(w, r, store.QuestionFilter{
		CompanyID: req.CompanyID,
		RoundID:   req.RoundID,
		Language:  req.Language,
	}, "No questions found for this language")
}

// DeleteQuestionsByDifficulty handles DELETE /question/delete-questions-by-difficulty.
func (h *Handler) DeleteQuestionsByDifficulty(w http.ResponseWriter, r *http.Request) {
	var req deleteQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.CompanyID == "" || req.RoundID == "" || req.Difficulty == "" {
		respondError(w, r, apperr.Validation("Company ID, Round ID and Difficulty are required"))
		return
	}

	h.deleteQuestions(w, r, store.QuestionFilter{
		CompanyID:  req.CompanyID,
		RoundID:    req.RoundID,
		Difficulty: req.Difficulty,
	}, "No questions found for this difficulty")
}

// deleteQuestions is the shared mutation path: batch delete, then clear
// the whole key-variant family for the parent round so no filtered
// listing can serve pre-deletion data.
func (h *Handler) deleteQuestions(w http.ResponseWriter, r *http.Request, f store.QuestionFilter, notFoundMsg string) {
	ctx := r.Context()

	deleted, err := h.store.DeleteQuestions(ctx, f)
	if err != nil {
		respondError(w, r, apperr.Upstream("failed to delete questions", err))
		return
	}
	if deleted == 0 {
		respondError(w, r, apperr.NotFound("%s", notFoundMsg))
		return
	}

	cache.Invalidate(ctx, h.cache,
		cache.QuestionKeyVariants(f.CompanyID, f.RoundID, f.Language, f.Difficulty)...)

	writeJSON(w, http.StatusOK, deleteQuestionsResponse{
		Success: true,
		Message: "All questions deleted successfully",
		Deleted: deleted,
	})
}
