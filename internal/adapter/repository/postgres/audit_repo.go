package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditInsert = `
	INSERT INTO audit_logs (
		id, tenant_id, action, resource_type, resource_id, request_id,
		before_state, after_state, status, error_message, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	before, after, err := marshalStates(log)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, auditInsert, auditArgs(log, before, after)...)

	return err
}

// CreateTx inserts an audit log entry within a posting transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	before, after, err := marshalStates(log)
	if err != nil {
		return err
	}

	_, err = tx.(*Tx).PgxTx().Exec(ctx, auditInsert, auditArgs(log, before, after)...)

	return err
}

// List retrieves audit logs with filtering.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, tenant_id, action, resource_type, resource_id, request_id,
		       before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []any{}

	if filter.TenantID != "" {
		args = append(args, filter.TenantID)
		query += fmt.Sprintf(` AND tenant_id = $%d`, len(args))
	}

	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(` AND action = $%d`, len(args))
	}

	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		query += fmt.Sprintf(` AND resource_type = $%d`, len(args))
	}

	if filter.ResourceID != "" {
		args = append(args, filter.ResourceID)
		query += fmt.Sprintf(` AND resource_id = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var before, after []byte

		err := rows.Scan(
			&log.ID,
			&log.TenantID,
			&log.Action,
			&log.ResourceType,
			&log.ResourceID,
			&log.RequestID,
			&before,
			&after,
			&log.Status,
			&log.ErrorMessage,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if before != nil {
			_ = json.Unmarshal(before, &log.BeforeState)
		}

		if after != nil {
			_ = json.Unmarshal(after, &log.AfterState)
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

func marshalStates(log *domain.AuditLog) (before, after []byte, err error) {
	if log.BeforeState != nil {
		before, err = json.Marshal(log.BeforeState)
		if err != nil {
			return nil, nil, err
		}
	}

	if log.AfterState != nil {
		after, err = json.Marshal(log.AfterState)
		if err != nil {
			return nil, nil, err
		}
	}

	return before, after, nil
}

func auditArgs(log *domain.AuditLog, before, after []byte) []any {
	return []any{
		log.ID,
		log.TenantID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		before,
		after,
		log.Status,
		log.ErrorMessage,
		log.CreatedAt,
	}
}
