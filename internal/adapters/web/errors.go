package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"phonestore-crm/internal/core"
)

type errorResponse struct {
	Message   string            `json:"message"`
	Errors    []core.FieldError `json:"errors,omitempty"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, r, status, errorResponse{Message: message, Code: code})
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps domain errors onto HTTP statuses. Anything unrecognised is a
// 500 with a generic message; the detail is logged, never returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		authErr       *core.AuthorizationError
		notFoundErr   *core.NotFoundError
		stockErr      *core.StockError
	)
	switch {
	case errors.As(err, &validationErr):
		writeErrorBody(w, r, http.StatusBadRequest, errorResponse{
			Message: validationErr.Message,
			Errors:  validationErr.Fields,
			Code:    "VALIDATION_ERROR",
		})
	case errors.As(err, &stockErr):
		writeError(w, r, stockErr.Error(), "STOCK_ERROR", http.StatusBadRequest)
	case errors.As(err, &authErr):
		writeError(w, r, authErr.Message, "FORBIDDEN", http.StatusForbidden)
	case errors.As(err, &notFoundErr):
		writeError(w, r, notFoundErr.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, "Invalid email or password", "UNAUTHORIZED", http.StatusUnauthorized)
	default:
		log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).
			Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
