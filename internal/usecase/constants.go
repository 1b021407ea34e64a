package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. This prevents long-running transactions from holding
	// account row locks.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long posting idempotency records are kept.
	IdempotencyKeyTTL = 24 * time.Hour

	// StanCounterTTL is how long per-tenant-per-day STAN counters live.
	// Two days, so a counter never expires inside the day it covers.
	StanCounterTTL = 48 * time.Hour

	// BalanceCacheTTL is how long cached balance reads stay fresh when no
	// posting invalidates them first.
	BalanceCacheTTL = 30 * time.Second

	// defaultPageSize and maxPageSize bound paginated list queries.
	defaultPageSize = 20
	maxPageSize     = 100
)
