package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// IdempotencyRepository implements usecase.IdempotencyRepository. The
// (tenant_id, key) primary key is what serializes concurrent postings
// carrying the same key: the second insert blocks on the first's row lock
// and loses the conflict once the winner commits.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// Get retrieves a tenant's idempotency record, or nil when none exists.
func (r *IdempotencyRepository) Get(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT key, tenant_id, batch_id, response_code, created_at, expires_at
		FROM idempotency_keys
		WHERE tenant_id = $1 AND key = $2
	`

	var record domain.IdempotencyRecord
	var responseCode string

	err := r.pool.QueryRow(ctx, query, tenantID, key).Scan(
		&record.Key,
		&record.TenantID,
		&record.BatchID,
		&responseCode,
		&record.CreatedAt,
		&record.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	record.ResponseCode = domain.ResponseCode(responseCode)

	return &record, nil
}

// CreateTx reserves a key within a posting transaction. An expired row is
// overwritten in place, so a legitimate retry after the TTL runs fresh
// instead of bouncing off the old reservation until the purge job fires.
func (r *IdempotencyRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO idempotency_keys (tenant_id, key, batch_id, response_code, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, key) DO UPDATE
		SET batch_id = EXCLUDED.batch_id,
		    response_code = EXCLUDED.response_code,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= EXCLUDED.created_at
	`

	tag, err := pgxTx.Exec(ctx, query,
		record.TenantID,
		record.Key,
		record.BatchID,
		string(record.ResponseCode),
		record.CreatedAt,
		record.ExpiresAt,
	)
	if err != nil {
		return err
	}

	// Zero rows means the conflict row is still live: a concurrent or
	// earlier posting holds the key.
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateIdempotencyKey
	}

	return nil
}

// DeleteExpired removes records past their expiry.
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
