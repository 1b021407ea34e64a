package usecase

import (
	"context"

	"github.com/escrowpay/ledger/internal/domain"
)

// QueryService serves the read-only views of posted data: batches, the
// lines inside them, and per-account statements. It never touches
// balances and takes no locks.
type QueryService struct {
	batchRepo BatchRepository
	lineRepo  LineRepository
}

// NewQueryService creates a new QueryService.
func NewQueryService(batchRepo BatchRepository, lineRepo LineRepository) *QueryService {
	return &QueryService{batchRepo: batchRepo, lineRepo: lineRepo}
}

// GetBatch returns one posting batch, scoped to the tenant. A batch
// belonging to another tenant is reported as not found.
func (uc *QueryService) GetBatch(ctx context.Context, tenantID, id string) (*domain.PostingBatch, error) {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if batch.TenantID != tenantID {
		return nil, domain.ErrBatchNotFound
	}

	return batch, nil
}

// ListBatchLines returns the ledger lines of one batch, scoped to the
// tenant through the owning batch.
func (uc *QueryService) ListBatchLines(ctx context.Context, tenantID, batchID string) ([]*domain.LedgerLine, error) {
	if _, err := uc.GetBatch(ctx, tenantID, batchID); err != nil {
		return nil, err
	}

	return uc.lineRepo.GetByBatch(ctx, batchID)
}

// ListAccountLines returns an account statement: the lines posted against
// one account, newest first.
func (uc *QueryService) ListAccountLines(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return uc.lineRepo.GetByAccount(ctx, accountID, limit, offset)
}

// ListMessageBatches returns every batch posted for one message, scoped
// to the tenant. A forward posting and its later reversal each appear as
// their own batch.
func (uc *QueryService) ListMessageBatches(ctx context.Context, tenantID, messageID string) ([]*domain.PostingBatch, error) {
	batches, err := uc.batchRepo.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	scoped := make([]*domain.PostingBatch, 0, len(batches))
	for _, b := range batches {
		if b.TenantID == tenantID {
			scoped = append(scoped, b)
		}
	}

	return scoped, nil
}
