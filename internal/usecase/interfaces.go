package usecase

import (
	"context"
	"time"

	"github.com/escrowpay/ledger/internal/domain"
)

// AccountRepository defines data access for account balances.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error)
	// GetByIDsForUpdate acquires exclusive row locks in ascending id
	// order regardless of the order ids are passed in.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, tenantID string, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance, version int64, updatedAt time.Time) error
	List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
}

// BatchRepository defines data access for posting batches.
type BatchRepository interface {
	Create(ctx context.Context, tx Transaction, batch *domain.PostingBatch) error
	GetByID(ctx context.Context, id string) (*domain.PostingBatch, error)
	ListByMessage(ctx context.Context, messageID string) ([]*domain.PostingBatch, error)
}

// LineRepository defines data access for ledger lines.
type LineRepository interface {
	Create(ctx context.Context, tx Transaction, line *domain.LedgerLine) error
	GetByBatch(ctx context.Context, batchID string) ([]*domain.LedgerLine, error)
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error)
}

// MessageRepository defines data access for financial messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.FinancialMessage) error
	GetByID(ctx context.Context, id string) (*domain.FinancialMessage, error)
	UpdatePhase(ctx context.Context, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error
	UpdatePhaseTx(ctx context.Context, tx Transaction, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error
}

// IdempotencyRepository defines data access for posting idempotency
// records, scoped per tenant: the same caller-supplied key from two
// tenants names two independent records. CreateTx must surface a clash
// with a live record as domain.ErrDuplicateIdempotencyKey and must
// reclaim an expired one.
type IdempotencyRepository interface {
	Get(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error)
	CreateTx(ctx context.Context, tx Transaction, record *domain.IdempotencyRecord) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// TrialBalance sums debit and credit line amounts and net account
	// balances per currency.
	TrialBalance(ctx context.Context) ([]domain.TrialBalanceRow, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	// CreateStandalone writes an event outside any posting transaction,
	// for message lifecycle changes that have no ledger write of their own.
	CreateStandalone(ctx context.Context, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique row IDs.
type IDGenerator interface {
	Generate() string
}

// SequenceProvider hands out monotonically increasing sequence numbers
// under a named counter. Next must be atomic across processes: two
// concurrent calls with the same key never observe the same value.
type SequenceProvider interface {
	Next(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// Retrier retries an operation on transient infrastructure errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore caches whole HTTP responses keyed by client
// idempotency key. Used by the transport middleware; the posting engine's
// own idempotency lives in IdempotencyRepository.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a reservation after a failed request so a retry can
	// run again.
	Release(ctx context.Context, key string) error
}
