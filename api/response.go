package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pagesmith/pagesmith/internal/editor"
	"github.com/pagesmith/pagesmith/internal/generate"
	"github.com/pagesmith/pagesmith/internal/identity"
)

// writeJSON writes a JSON response with the given status code.
// Note: If encoding fails after WriteHeader is called, there's no way to
// notify the client since the status code is already sent. The error is
// logged for debugging but doesn't affect the response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`

	// Balance is populated on insufficient-credit errors so the caller can
	// show the user how many credits they actually have.
	Balance *int `json:"balance,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// mapError translates a pipeline error into an HTTP status, a stable error
// code, and the response body. One mapping serves both the plain JSON path
// and the SSE error event, so the two surfaces never disagree on codes.
func mapError(err error) (status int, resp ErrorResponse) {
	var credits *editor.InsufficientCreditsError

	switch {
	case errors.As(err, &credits):
		balance := credits.Balance
		return http.StatusPaymentRequired, ErrorResponse{
			Error:   "INSUFFICIENT_CREDITS",
			Message: "not enough credits for an edit",
			Balance: &balance,
		}
	case errors.Is(err, identity.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   "USER_NOT_FOUND",
			Message: "no site exists for this email",
		}
	case errors.Is(err, editor.ErrMissingInstruction):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "MISSING_INSTRUCTION",
			Message: "instruction is required",
		}
	case errors.Is(err, editor.ErrMissingDescription):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "MISSING_DESCRIPTION",
			Message: "businessDescription is required",
		}
	case errors.Is(err, editor.ErrVersionNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   "VERSION_NOT_FOUND",
			Message: "the requested base version does not exist",
		}
	case errors.Is(err, generate.ErrNotConfigured):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:   "GENERATION_NOT_CONFIGURED",
			Message: "generation service is not configured",
		}
	case errors.Is(err, generate.ErrEmptyResult):
		return http.StatusBadGateway, ErrorResponse{
			Error:   "EMPTY_GENERATION",
			Message: "generation produced no usable output",
		}
	case errors.Is(err, generate.ErrUnavailable):
		return http.StatusBadGateway, ErrorResponse{
			Error:   "GENERATION_FAILED",
			Message: "generation service failed",
		}
	case errors.Is(err, editor.ErrPersistenceFailed):
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "PERSISTENCE_FAILED",
			Message: "the result could not be saved",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "INTERNAL",
			Message: "internal server error",
		}
	}
}
