// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/dtos"
	"github.com/iyunix/go-assistant/internal/middleware"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, dtos.ErrorResponse{Error: message})
}

// writeServiceError maps a service error onto its HTTP status. Unknown errors
// are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		appErr = domain.NewUnknownError("handler", err)
	}

	switch appErr.Type {
	case domain.ErrTypeNotAuthenticated:
		writeError(w, appErr.Message, http.StatusUnauthorized)
	case domain.ErrTypeNotFound:
		writeError(w, appErr.Message, http.StatusNotFound)
	case domain.ErrTypeValidation:
		writeError(w, appErr.Message, http.StatusBadRequest)
	case domain.ErrTypeConflict:
		writeError(w, appErr.Message, http.StatusConflict)
	case domain.ErrTypeUpstream:
		middleware.LoggerFromContext(r.Context()).Warn("upstream failure", "error", err)
		writeError(w, appErr.Message, http.StatusBadGateway)
	default:
		middleware.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a bounded JSON body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
