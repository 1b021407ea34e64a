package usecase

import (
	"context"
	"errors"

	"github.com/escrowpay/ledger/internal/domain"
)

// ErrInconsistentLedger is returned when some currency's posted debits do
// not equal its credits.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")

// ConsistencyService verifies ledger-wide invariants.
type ConsistencyService struct {
	ledgerRepo LedgerRepository
}

// NewConsistencyService creates a new ConsistencyService.
func NewConsistencyService(ledgerRepo LedgerRepository) *ConsistencyService {
	return &ConsistencyService{ledgerRepo: ledgerRepo}
}

// TrialBalance returns per-currency ledger totals.
func (uc *ConsistencyService) TrialBalance(ctx context.Context) ([]domain.TrialBalanceRow, error) {
	return uc.ledgerRepo.TrialBalance(ctx)
}

// CheckConsistency verifies that every currency's posted lines balance.
// Balanced postings are the only write path, so an imbalance here means
// history was tampered with outside the engine.
func (uc *ConsistencyService) CheckConsistency(ctx context.Context) (bool, error) {
	rows, err := uc.ledgerRepo.TrialBalance(ctx)
	if err != nil {
		return false, err
	}

	for _, row := range rows {
		if !row.Balanced() {
			return false, ErrInconsistentLedger
		}
	}

	return true, nil
}
