package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	PostingsCreated  prometheus.Counter
	PostingsReplayed prometheus.Counter
	PostingDuration  prometheus.Histogram
	PostingErrors    *prometheus.CounterVec
	PostingAmount    prometheus.Histogram

	// Message metrics
	MessagesCreated  prometheus.Counter
	MessageOutcomes  *prometheus.CounterVec
	MessagesReversed prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBErrors *prometheus.CounterVec

	// Redis metrics
	RedisErrors *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		PostingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_postings_created_total",
			Help: "Total number of posting batches committed",
		}),
		PostingsReplayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_postings_replayed_total",
			Help: "Total number of postings answered from an idempotency record",
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		PostingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_posting_errors_total",
				Help: "Total number of posting failures by response code",
			},
			[]string{"response_code"},
		),
		PostingAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_posting_amount_minor_units",
			Help:    "Posted batch totals in minor units",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000, 100000000},
		}),

		MessagesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_messages_created_total",
			Help: "Total number of financial messages taken in",
		}),
		MessageOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_message_outcomes_total",
				Help: "Terminal message phases by phase",
			},
			[]string{"phase"},
		),
		MessagesReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_messages_reversed_total",
			Help: "Total number of messages reversed",
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_published_total",
			Help: "Total outbox events handed to the sink",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_failures_total",
			Help: "Total outbox publish failures",
		}),
	}
}
