package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/escrowpay/ledger/internal/usecase"
)

// TenantHeader is the header every API request must carry. All reads and
// writes are scoped to the tenant it names.
const TenantHeader = "X-Tenant-ID"

type contextKey string

const tenantContextKey contextKey = "tenant_id"

// RequireTenant rejects requests without a tenant header and stores the
// tenant id in the request context for handlers.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "Bad Request",
				"message": "missing " + TenantHeader + " header",
			})
			return
		}

		ctx := context.WithValue(r.Context(), tenantContextKey, tenantID)

		// Correlation id for audit records: chi's request id when the
		// middleware ran, a fresh UUID otherwise.
		requestID := chimiddleware.GetReqID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = usecase.WithRequestID(ctx, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithTenant returns a context carrying the tenant id, as RequireTenant
// would have stored it.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenantID)
}

// TenantID returns the tenant id stored by RequireTenant, or "" when the
// request skipped the middleware.
func TenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantContextKey).(string)
	return tenantID
}
