package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RecoveryMiddleware turns a handler panic into a logged 500 carrying the
// service's error body instead of a dropped connection.
type RecoveryMiddleware struct {
	logger zerolog.Logger
}

// NewRecoveryMiddleware creates a new RecoveryMiddleware.
func NewRecoveryMiddleware(logger zerolog.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{logger: logger}
}

// Wrap wraps an http.Handler with panic recovery.
func (m *RecoveryMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("tenant_id", TenantID(r.Context())).
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Msg("panic recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal server error","response_code":"96"}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
