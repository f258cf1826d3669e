package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"prepdeck-backend/pkg/logging"
)

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Cache  string `json:"cache"`
}

// Health handles GET /healthz. The store is load-bearing; the cache is
// reported but a cache outage alone does not fail the check, consistent
// with the cache being optional acceleration everywhere else.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	resp := healthResponse{Status: "ok", Store: "ok", Cache: "ok"}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		logger.Error("store health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Store = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if err := h.cache.Ping(ctx); err != nil {
		logger.Warn("cache health check failed", zap.Error(err))
		resp.Cache = "unreachable"
	}

	writeJSON(w, status, resp)
}
