package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 5 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, cache *redis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, cache: cache}
}

// Liveness returns 200 while the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings both stores. Postings cannot run without postgres, and
// redis backs sequence allocation, so either one failing takes the node
// out of rotation.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"postgres": "ok", "redis": "ok"}
	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
	}
	if err := h.cache.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
	}

	for _, status := range checks {
		if status != "ok" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"checks": checks,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": checks,
	})
}
