package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// LineRepository implements usecase.LineRepository. Ledger lines are
// append-only; the table's trigger rejects UPDATE and DELETE.
type LineRepository struct {
	pool *pgxpool.Pool
}

// NewLineRepository creates a new LineRepository.
func NewLineRepository(pool *pgxpool.Pool) *LineRepository {
	return &LineRepository{pool: pool}
}

const lineColumns = `id, batch_id, account_id, amount, direction, description, metadata, created_at`

// Create writes one ledger line within a posting transaction.
func (r *LineRepository) Create(ctx context.Context, tx usecase.Transaction, line *domain.LedgerLine) error {
	pgxTx := tx.(*Tx).PgxTx()

	var metadata []byte
	if line.Metadata != nil {
		var err error
		metadata, err = json.Marshal(line.Metadata)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO ledger_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		line.ID,
		line.BatchID,
		line.AccountID,
		line.Amount,
		string(line.Direction),
		line.Description,
		metadata,
		line.CreatedAt,
	)

	return err
}

// GetByBatch retrieves the lines of one batch.
func (r *LineRepository) GetByBatch(ctx context.Context, batchID string) ([]*domain.LedgerLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM ledger_lines
		WHERE batch_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLines(rows)
}

// GetByAccount retrieves an account's lines, newest first.
func (r *LineRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM ledger_lines
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLines(rows)
}

func scanLines(rows pgx.Rows) ([]*domain.LedgerLine, error) {
	var lines []*domain.LedgerLine

	for rows.Next() {
		var line domain.LedgerLine
		var direction string
		var metadata []byte

		err := rows.Scan(
			&line.ID,
			&line.BatchID,
			&line.AccountID,
			&line.Amount,
			&direction,
			&line.Description,
			&metadata,
			&line.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		line.Direction = domain.Direction(direction)

		if metadata != nil {
			_ = json.Unmarshal(metadata, &line.Metadata)
		}

		lines = append(lines, &line)
	}

	return lines, rows.Err()
}
