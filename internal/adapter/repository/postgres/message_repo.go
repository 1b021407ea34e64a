package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// MessageRepository implements usecase.MessageRepository.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, tenant_id, stan, rrn, processing_code, phase, response_code, created_at, updated_at`

// Create creates a new financial message.
func (r *MessageRepository) Create(ctx context.Context, message *domain.FinancialMessage) error {
	query := `
		INSERT INTO financial_messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.TenantID,
		string(message.STAN),
		string(message.RRN),
		string(message.ProcessingCode),
		string(message.Phase),
		string(message.ResponseCode),
		message.CreatedAt,
		message.UpdatedAt,
	)

	return err
}

// GetByID retrieves a message by ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.FinancialMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM financial_messages
		WHERE id = $1
	`

	message, err := scanMessage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}

		return nil, err
	}

	return message, nil
}

// UpdatePhase records a phase transition outside any posting transaction.
func (r *MessageRepository) UpdatePhase(ctx context.Context, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error {
	return r.updatePhase(ctx, r.pool, id, phase, responseCode, updatedAt)
}

// UpdatePhaseTx records a phase transition within a posting transaction.
func (r *MessageRepository) UpdatePhaseTx(ctx context.Context, tx usecase.Transaction, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error {
	return r.updatePhase(ctx, tx.(*Tx).PgxTx(), id, phase, responseCode, updatedAt)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *MessageRepository) updatePhase(ctx context.Context, db execer, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error {
	query := `
		UPDATE financial_messages
		SET phase = $2, response_code = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := db.Exec(ctx, query, id, string(phase), string(responseCode), updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}

	return nil
}

func scanMessage(row pgx.Row) (*domain.FinancialMessage, error) {
	var message domain.FinancialMessage
	var stan, rrn, code, phase, responseCode string

	err := row.Scan(
		&message.ID,
		&message.TenantID,
		&stan,
		&rrn,
		&code,
		&phase,
		&responseCode,
		&message.CreatedAt,
		&message.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	message.STAN = domain.STAN(stan)
	message.RRN = domain.RRN(rrn)
	message.ProcessingCode = domain.ProcessingCode(code)
	message.Phase = domain.Phase(phase)
	message.ResponseCode = domain.ResponseCode(responseCode)

	return &message, nil
}
