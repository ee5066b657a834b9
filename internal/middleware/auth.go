package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// TokenValidator resolves a session token to a user id.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// NewJWTMiddleware rejects requests without a valid session with
// 401 {"error":"Not authenticated"}. The token is read from the auth_token
// cookie, or from an Authorization bearer header for non-browser clients.
func NewJWTMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := TokenFromRequest(r)
			if token == "" {
				LoggerFromContext(r.Context()).Debug("missing session token", "path", r.URL.Path)
				notAuthenticated(w)
				return
			}

			userID, err := validator.ValidateToken(r.Context(), token)
			if err != nil || userID == "" {
				LoggerFromContext(r.Context()).Info("invalid session token", "path", r.URL.Path, "error", err)
				if fromCookie {
					ClearAuthCookie(w)
				}
				notAuthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest returns the session token and whether it came from the cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token), false
		}
	}
	return "", false
}

// UserIDFromContext returns the authenticated user id, or "" if none.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func notAuthenticated(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Not authenticated"})
}

func writeJSONError(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
