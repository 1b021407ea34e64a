package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/escrowpay/ledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"

	// processingPlaceholder marks a key reserved by an in-flight request.
	processingPlaceholder = "processing"

	idempotencyTTL = 24 * time.Hour
)

// IdempotencyMiddleware caches whole responses at the transport edge so a
// retried request replays the first answer without re-entering the
// posting engine. The engine keeps its own durable idempotency record;
// this layer only saves the round trip.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Keys are scoped per tenant so two tenants reusing the same
		// client-side key never see each other's responses.
		key = TenantID(r.Context()) + ":" + key

		exists, cachedResponse, err := m.store.CheckAndSet(r.Context(), key, nil, idempotencyTTL)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if exists {
			if cachedResponse != nil && string(cachedResponse) != processingPlaceholder {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Replay", "true")
				w.Write(cachedResponse)
				return
			}

			// A concurrent request holds the reservation and has not
			// finished yet.
			http.Error(w, "request with this idempotency key is in flight", http.StatusConflict)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			m.store.Update(r.Context(), key, recorder.body.Bytes(), idempotencyTTL)
			return
		}

		// Failed requests drop the reservation so the client may retry.
		m.store.Release(r.Context(), key)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
