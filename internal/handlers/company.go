package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"prepdeck-backend/internal/apperr"
	"prepdeck-backend/internal/cache"
	"prepdeck-backend/internal/store"
)

type createCompanyRequest struct {
	UserID      string `json:"userId"`
	CompanyName string `json:"companyName"`
}

type createCompanyResponse struct {
	Success   bool   `json:"success"`
	CompanyID string `json:"companyId"`
}

// CreateCompany handles POST /company/create-company. Company names are
// unique per user; a repeat create is a validation failure, not an upsert.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.CompanyName = strings.TrimSpace(req.CompanyName)

	if req.UserID == "" || req.CompanyName == "" {
		respondError(w, r, apperr.Validation("User ID and company name are required"))
		return
	}

	exists, err := h.store.CompanyExists(ctx, req.UserID, req.CompanyName)
	if err != nil {
		respondError(w, r, apperr.Upstream("failed to check existing companies", err))
		return
	}
	if exists {
		respondError(w, r, apperr.Validation("You have already created the company '%s'.", req.CompanyName))
		return
	}

	company := store.Company{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		CompanyName: req.CompanyName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateCompany(ctx, company); err != nil {
		respondError(w, r, apperr.Upstream("failed to create company", err))
		return
	}

	writeJSON(w, http.StatusOK, createCompanyResponse{Success: true, CompanyID: company.ID})
}

type createRoundRequest struct {
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	RoundName string `json:"roundName"`
}

type createRoundResponse struct {
	Success bool   `json:"success"`
	RoundID string `json:"roundId"`
}

// CreateRound handles POST /company/create-round. The company must exist
// and belong to the requesting user.
func (h *Handler) CreateRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRoundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.UserID == "" || req.CompanyID == "" || req.RoundName == "" {
		respondError(w, r, apperr.Validation("All fields are required"))
		return
	}

	company, err := h.store.CompanyByID(ctx, req.CompanyID)
	if err == store.ErrNotFound {
		respondError(w, r, apperr.NotFound("Company not found"))
		return
	}
	if err != nil {
		respondError(w, r, apperr.Upstream("failed to load company", err))
		return
	}
	if company.UserID != req.UserID {
		respondError(w, r, apperr.Authorization("You do not own this company"))
		return
	}

	round := store.Round{
		ID:        uuid.NewString(),
		CompanyID: req.CompanyID,
		RoundName: req.RoundName,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateRound(ctx, round); err != nil {
		respondError(w, r, apperr.Upstream("failed to create round", err))
		return
	}

	// The cached rounds listing for this company is now stale.
	cache.Invalidate(ctx, h.cache, cache.RoundsKey(req.CompanyID))

	writeJSON(w, http.StatusOK, createRoundResponse{Success: true, RoundID: round.ID})
}

type fetchCompaniesRequest struct {
	UserID string `json:"userId"`
}

type fetchCompaniesResponse struct {
	Success   bool            `json:"success"`
	Companies []store.Company `json:"companies"`
}

// FetchCompanies handles POST /company/fetch-company.
func (h *Handler) FetchCompanies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req fetchCompaniesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.UserID == "" {
		respondError(w, r, apperr.Validation("User ID is required"))
		return
	}

	companies, err := h.store.CompaniesByUser(ctx, req.UserID)
	if err != nil {
		respondError(w, r, apperr.Upstream("failed to fetch companies", err))
		return
	}
	if len(companies) == 0 {
		respondError(w, r, apperr.NotFound("No companies found"))
		return
	}

	writeJSON(w, http.StatusOK, fetchCompaniesResponse{Success: true, Companies: companies})
}
