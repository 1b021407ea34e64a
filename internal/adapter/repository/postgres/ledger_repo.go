package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// TrialBalance aggregates posted lines and stored balances per currency.
func (r *LedgerRepository) TrialBalance(ctx context.Context) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT balances.currency,
		       COALESCE(lines.total_debits, 0)  AS total_debits,
		       COALESCE(lines.total_credits, 0) AS total_credits,
		       balances.net_balance,
		       COALESCE(lines.line_count, 0)    AS line_count
		FROM (
			SELECT currency, SUM(balance) AS net_balance
			FROM accounts
			GROUP BY currency
		) balances
		LEFT JOIN (
			SELECT a.currency,
			       SUM(l.amount) FILTER (WHERE l.direction = 'debit')  AS total_debits,
			       SUM(l.amount) FILTER (WHERE l.direction = 'credit') AS total_credits,
			       COUNT(*)                                            AS line_count
			FROM ledger_lines l
			JOIN accounts a ON a.id = l.account_id
			GROUP BY a.currency
		) lines ON lines.currency = balances.currency
		ORDER BY balances.currency
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow

		err := rows.Scan(
			&row.Currency,
			&row.TotalDebits,
			&row.TotalCredits,
			&row.NetBalance,
			&row.LineCount,
		)
		if err != nil {
			return nil, err
		}

		result = append(result, row)
	}

	return result, rows.Err()
}
