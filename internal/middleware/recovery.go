// In: internal/middleware/recovery.go

package middleware

import (
	"net/http"
	"runtime/debug"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				LoggerFromContext(r.Context()).Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))

				w.Header().Set("Connection", "close")
				writeJSONError(w, http.StatusInternalServerError, map[string]interface{}{"error": "Something went wrong on our end."})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
