package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"lpg-console/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, msg, code string, status int) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeDomainError maps domain errors onto HTTP statuses. Unknown errors
// become opaque 500s so internal details never leak to clients.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr   *core.ValidationError
		insufficientErr *core.InsufficientStockError
		consistencyErr  *core.ConsistencyViolationError
		transientErr    *core.TransientIOError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, validationErr.Error(), "VALIDATION_FAILED", http.StatusBadRequest)
	case errors.As(err, &insufficientErr):
		writeError(w, r, insufficientErr.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
	case errors.As(err, &consistencyErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:     consistencyErr.Error(),
			Code:      "TRANSFER_INCONSISTENT",
			RequestID: requestIDFromContext(r.Context()),
			Retryable: core.IsRetryable(err),
		})
	case errors.As(err, &transientErr):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:     "storage temporarily unavailable",
			Code:      "STORAGE_UNAVAILABLE",
			RequestID: requestIDFromContext(r.Context()),
			Retryable: true,
		})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, "not found", "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, "invalid credentials", "INVALID_CREDENTIALS", http.StatusUnauthorized)
	case errors.Is(err, core.ErrNoActor):
		writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
