package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// BatchRepository implements usecase.BatchRepository.
type BatchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(pool *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{pool: pool}
}

const batchColumns = `id, message_id, tenant_id, processing_code, total_debits, total_credits, entry_count, posted_at`

// Create writes a batch header within a posting transaction.
func (r *BatchRepository) Create(ctx context.Context, tx usecase.Transaction, batch *domain.PostingBatch) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO posting_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		batch.ID,
		batch.MessageID,
		batch.TenantID,
		string(batch.ProcessingCode),
		batch.TotalDebits,
		batch.TotalCredits,
		batch.EntryCount,
		batch.PostedAt,
	)

	return err
}

// GetByID retrieves a batch by ID.
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.PostingBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM posting_batches
		WHERE id = $1
	`

	batch, err := scanBatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}

		return nil, err
	}

	return batch, nil
}

// ListByMessage retrieves every batch posted under a message.
func (r *BatchRepository) ListByMessage(ctx context.Context, messageID string) ([]*domain.PostingBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM posting_batches
		WHERE message_id = $1
		ORDER BY posted_at
	`

	rows, err := r.pool.Query(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*domain.PostingBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}

		batches = append(batches, batch)
	}

	return batches, rows.Err()
}

func scanBatch(row pgx.Row) (*domain.PostingBatch, error) {
	var batch domain.PostingBatch
	var code string

	err := row.Scan(
		&batch.ID,
		&batch.MessageID,
		&batch.TenantID,
		&code,
		&batch.TotalDebits,
		&batch.TotalCredits,
		&batch.EntryCount,
		&batch.PostedAt,
	)
	if err != nil {
		return nil, err
	}

	batch.ProcessingCode = domain.ProcessingCode(code)

	return &batch, nil
}
