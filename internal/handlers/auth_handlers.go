// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"time"

	"github.com/iyunix/go-assistant/internal/dtos"
	"github.com/iyunix/go-assistant/internal/middleware"
	"github.com/iyunix/go-assistant/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	UserService  user_services.UserServiceInterface
	TokenTTL     time.Duration
	SecureCookie bool
}

func NewAuthHandler(service user_services.UserServiceInterface, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{UserService: service, TokenTTL: tokenTTL, SecureCookie: secureCookie}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req = req.Trimmed()

	user, err := h.UserService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.LoggerFromContext(r.Context()).Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, dtos.MessageResponseDTO{Message: "User created successfully"})
}

// Login sets the session cookie and also returns the token for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.SetAuthCookie(w, token, h.TokenTTL, h.SecureCookie)
	writeJSON(w, http.StatusOK, dtos.LoginResponseDTO{User: dtos.FromDomain(*user), Token: token})
}

// Logout revokes the presented token and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, _ := middleware.TokenFromRequest(r); token != "" {
		if err := h.UserService.Logout(r.Context(), token); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	middleware.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, dtos.MessageResponseDTO{Message: "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Profile(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(*user))
}
