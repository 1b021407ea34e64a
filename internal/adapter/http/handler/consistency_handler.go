package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// ConsistencyService is the ledger-wide check surface the handler needs.
type ConsistencyService interface {
	TrialBalance(ctx context.Context) ([]domain.TrialBalanceRow, error)
	CheckConsistency(ctx context.Context) (bool, error)
}

// ConsistencyHandler serves the operator-facing ledger health reports.
// These span all tenants: an imbalance anywhere is a system defect, not
// a tenant condition.
type ConsistencyHandler struct {
	consistency ConsistencyService
}

// NewConsistencyHandler creates a new consistency handler.
func NewConsistencyHandler(consistency ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{consistency: consistency}
}

// TrialBalance handles GET /ledger/trial-balance.
func (h *ConsistencyHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.consistency.TrialBalance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromDomain(rows))
}

// Check handles GET /ledger/consistency. A healthy ledger returns 200;
// an imbalanced one returns 500 so probes and alerting catch it.
func (h *ConsistencyHandler) Check(w http.ResponseWriter, r *http.Request) {
	ok, err := h.consistency.CheckConsistency(r.Context())
	if err != nil && !errors.Is(err, usecase.ErrInconsistentLedger) {
		writeDomainError(w, err)
		return
	}

	if !ok {
		writeError(w, http.StatusInternalServerError, "Internal Server Error", usecase.ErrInconsistentLedger.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"consistent": true})
}
