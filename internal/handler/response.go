// Package handler translates HTTP to service calls and service errors
// back to HTTP. Every response body is a JSON envelope with a success
// flag and a message, so clients parse one shape for both outcomes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/geodata-manager/internal/apperror"
)

// envelope is the common response shape. Extra payload fields are added
// per-endpoint by embedding it.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSON sends data with the given status. Headers and status must go
// out before the body; Encode writes the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status. Services return
// apperror sentinels; this is the only place they become status codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrMissingFile),
			errors.Is(err, apperror.ErrUnsupportedFile):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
		writeJSON(w, status, envelope{Success: false, Message: appErr.Message})
		return
	}

	// Unexpected errors surface their message in the envelope, matching
	// what API clients already parse.
	writeJSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Message: err.Error(),
	})
}
