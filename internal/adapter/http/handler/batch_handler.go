package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	"github.com/escrowpay/ledger/internal/domain"
)

// BatchService is the batch query surface the handler needs.
type BatchService interface {
	GetBatch(ctx context.Context, tenantID, id string) (*domain.PostingBatch, error)
	ListBatchLines(ctx context.Context, tenantID, batchID string) ([]*domain.LedgerLine, error)
}

// BatchHandler handles posting batch endpoints.
type BatchHandler struct {
	batches BatchService
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(batches BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// Get handles GET /batches/{id}.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := h.batches.GetBatch(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromDomain(batch))
}

// ListLines handles GET /batches/{id}/lines.
func (h *BatchHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lines, err := h.batches.ListBatchLines(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LinesFromDomain(lines))
}
