package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/usecase"
)

// txBeginner is the slice of the pool the manager needs; pgxmock
// satisfies it in tests.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxManager starts the transactions the posting engine runs its unit of
// work in. Read committed is deliberate: correctness comes from the
// FOR UPDATE row locks the engine takes, not from the isolation level,
// and serializable would only add retry noise.
type TxManager struct {
	pool txBeginner
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool txBeginner) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a posting transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx adapts a pgx transaction to the usecase.Transaction port. The
// repositories unwrap it via PgxTx to run their statements inside the
// posting's unit of work.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. The engine calls it deferred, so
// it also runs after a successful commit, where pgx reports it as a
// harmless pgx.ErrTxClosed the caller discards.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
