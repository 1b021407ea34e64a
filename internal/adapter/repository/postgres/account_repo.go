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

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, tenant_id, name, account_type, currency, balance, version, created_at, updated_at`

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.TenantID,
		account.Name,
		string(account.Type),
		account.Currency,
		account.Balance,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

// GetByID retrieves an account by ID, scoped to a tenant.
func (r *AccountRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND tenant_id = $2
	`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// GetByIDsForUpdate locks multiple accounts with FOR UPDATE. The ORDER BY
// makes the database acquire row locks in ascending id order, matching the
// ordering the posting engine relies on to avoid deadlocks.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string) ([]*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = ANY($1) AND tenant_id = $2
		ORDER BY id
		FOR UPDATE
	`

	rows, err := pgxTx.Query(ctx, query, ids, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0, len(ids))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// UpdateBalance writes a new balance and version within a transaction.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance, version int64, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE accounts
		SET balance = $2, version = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id, balance, version, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists a tenant's accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	var accountType string

	err := row.Scan(
		&account.ID,
		&account.TenantID,
		&account.Name,
		&accountType,
		&account.Currency,
		&account.Balance,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Type = domain.AccountType(accountType)

	return &account, nil
}
