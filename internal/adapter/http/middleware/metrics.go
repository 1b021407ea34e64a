package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/escrowpay/ledger/internal/infrastructure/metrics"
)

// MetricsMiddleware records per-request counters and latency on the
// shared metrics registry.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with metrics recording.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := normalizePath(r.URL.Path)

		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// idPrefixes are the route segments followed by a resource id. Replacing
// the id with a placeholder keeps metric label cardinality bounded.
var idPrefixes = []string{
	"/api/v1/accounts/",
	"/api/v1/messages/",
	"/api/v1/batches/",
}

// normalizePath replaces resource ids in known routes with :id.
func normalizePath(path string) string {
	for _, prefix := range idPrefixes {
		if !strings.HasPrefix(path, prefix) || len(path) == len(prefix) {
			continue
		}

		rest := path[len(prefix):]
		suffix := ""
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			suffix = rest[i:]
		}

		return prefix + ":id" + suffix
	}

	return path
}
