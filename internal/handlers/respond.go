// Package handlers holds the per-endpoint validation and orchestration:
// decode, validate, one or a few store calls, cache/limiter bookkeeping,
// JSON envelope out.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"prepdeck-backend/internal/apperr"
	"prepdeck-backend/pkg/logging"
)

// errorResponse is the failure envelope. Client errors carry message,
// server errors carry error; both always carry success=false so no
// failure leaves the client with a non-JSON body.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Used    *int64 `json:"used,omitempty"`
	// Remaining is set on rate-limit rejections only.
	Remaining *int64 `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps an error to its status and envelope. The wrapped
// cause goes to the logs, never to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.L(r.Context())
	status := apperr.StatusCode(err)
	msg := apperr.ClientMessage(err)

	if status >= 500 {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
		writeJSON(w, status, errorResponse{Success: false, Error: msg})
		return
	}

	logger.Warn("request rejected", zap.Int("status", status), zap.Error(err))

	var rl *apperr.RateLimitError
	if errors.As(err, &rl) {
		used := rl.Count
		remaining := rl.Limit - rl.Count
		if remaining < 0 {
			remaining = 0
		}
		writeJSON(w, status, errorResponse{
			Success:   false,
			Message:   msg,
			Used:      &used,
			Remaining: &remaining,
		})
		return
	}

	writeJSON(w, status, errorResponse{Success: false, Message: msg})
}

// decodeJSON reads a JSON request body; any decode failure is a
// validation error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}
