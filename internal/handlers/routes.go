// File: internal/handlers/routes.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-assistant/internal/middleware"
	"github.com/iyunix/go-assistant/internal/ratelimit"
)

// Router bundles what NewRouter wires together.
type Router struct {
	Chat        *ChatHandler
	Auth        *AuthHandler
	Validator   middleware.TokenValidator
	AuthLimiter ratelimit.Limiter
	// Ping checks storage for /health. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter builds the HTTP surface. Everything under /chats and /me needs a
// session; registration and login are rate limited per client IP.
func NewRouter(rt Router) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithRequestID, middleware.LoggingMiddleware, middleware.RecoverPanic)

	r.HandleFunc("/health", rt.health).Methods(http.MethodGet)
	r.HandleFunc("/api/log", LogFrontendEvent).Methods(http.MethodPost)

	authRoutes := r.NewRoute().Subrouter()
	if rt.AuthLimiter != nil {
		authRoutes.Use(
			middleware.RateLimitMiddleware(rt.AuthLimiter, "auth"),
			middleware.AuthSuccessMiddleware(rt.AuthLimiter, "auth"),
		)
	}
	authRoutes.HandleFunc("/register", rt.Auth.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", rt.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", rt.Auth.Logout).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.NewJWTMiddleware(rt.Validator))
	protected.HandleFunc("/me", rt.Auth.Me).Methods(http.MethodGet)
	protected.HandleFunc("/chats", rt.Chat.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/chats", rt.Chat.GetUserChats).Methods(http.MethodGet)
	protected.HandleFunc("/chats/{id}", rt.Chat.GetChat).Methods(http.MethodGet)
	protected.HandleFunc("/chats/{id}", rt.Chat.DeleteChat).Methods(http.MethodDelete)

	return r
}

func (rt Router) health(w http.ResponseWriter, r *http.Request) {
	if rt.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.Ping(ctx); err != nil {
			middleware.LoggerFromContext(r.Context()).Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
