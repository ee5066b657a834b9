package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iyunix/go-assistant/internal/middleware"
)

// FrontendLogPayload defines the structure for logs coming from clients.
type FrontendLogPayload struct {
	Level   string `json:"level"`             // "debug", "info", "warn" or "error"
	Message string `json:"message"`           // The main log message
	Context any    `json:"context,omitempty"` // Optional extra data (e.g., stack trace)
}

// LogFrontendEvent handles incoming log requests from clients.
func LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if err := decodeJSON(w, r, &payload); err != nil || payload.Message == "" {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	level := slog.LevelInfo
	switch strings.ToLower(payload.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	middleware.LoggerFromContext(r.Context()).Log(r.Context(), level, "CLIENT_LOG",
		slog.String("message", payload.Message),
		slog.Any("context", payload.Context),
		slog.String("user_id", middleware.UserIDFromContext(r.Context())),
	)

	w.WriteHeader(http.StatusNoContent)
}
