package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/escrowpay/ledger/internal/adapter/http/handler"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	"github.com/escrowpay/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	LedgerHandler      *handler.LedgerHandler
	MessageHandler     *handler.MessageHandler
	BatchHandler       *handler.BatchHandler
	ConsistencyHandler *handler.ConsistencyHandler
	HealthHandler      *handler.HealthHandler

	Logging          *middleware.LoggingMiddleware
	Metrics          *middleware.MetricsMiddleware
	Recovery         *middleware.RecoveryMiddleware
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	recovery := cfg.Recovery
	if recovery == nil {
		recovery = middleware.NewRecoveryMiddleware(zerolog.Nop())
	}
	r.Use(recovery.Wrap)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireTenant)

		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotency.Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.GetBalance)
			r.Get("/{id}/lines", cfg.AccountHandler.ListLines)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Post("/deposits", cfg.LedgerHandler.Deposit)
			r.Post("/withdrawals", cfg.LedgerHandler.Withdraw)
			r.Post("/locks", cfg.LedgerHandler.Lock)
			r.Post("/releases", cfg.LedgerHandler.Release)
			r.Post("/refunds", cfg.LedgerHandler.Refund)
			r.Get("/trial-balance", cfg.ConsistencyHandler.TrialBalance)
			r.Get("/consistency", cfg.ConsistencyHandler.Check)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/{id}", cfg.MessageHandler.Get)
			r.Get("/{id}/batches", cfg.MessageHandler.ListBatches)
			r.Post("/{id}/complete", cfg.MessageHandler.Complete)
			r.Post("/{id}/reverse", cfg.MessageHandler.Reverse)
		})

		r.Route("/batches", func(r chi.Router) {
			r.Get("/{id}", cfg.BatchHandler.Get)
			r.Get("/{id}/lines", cfg.BatchHandler.ListLines)
		})
	})

	return r
}
