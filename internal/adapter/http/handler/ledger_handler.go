package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	"github.com/escrowpay/ledger/internal/usecase"
)

// IdempotencyKeyHeader carries the client idempotency key for posting
// operations. Required on every ledger write.
const IdempotencyKeyHeader = "Idempotency-Key"

// LedgerOperations is the posting surface the handler needs.
type LedgerOperations interface {
	RecordDeposit(ctx context.Context, input usecase.DepositInput) (string, error)
	RecordWithdrawal(ctx context.Context, input usecase.WithdrawalInput) (string, error)
	LockFunds(ctx context.Context, input usecase.LockInput) (string, error)
	ReleaseFunds(ctx context.Context, input usecase.ReleaseInput) (string, error)
	RefundFunds(ctx context.Context, input usecase.RefundInput) (string, error)
}

// LedgerHandler handles the posting operation endpoints.
type LedgerHandler struct {
	ledger LedgerOperations
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(ledger LedgerOperations) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Deposit handles POST /ledger/deposits.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if !decodeOperation(w, r, &req) {
		return
	}

	batchID, err := h.ledger.RecordDeposit(r.Context(), req.ToUseCaseInput(middleware.TenantID(r.Context()), r.Header.Get(IdempotencyKeyHeader)))
	writeOperationResult(w, batchID, err)
}

// Withdraw handles POST /ledger/withdrawals.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if !decodeOperation(w, r, &req) {
		return
	}

	batchID, err := h.ledger.RecordWithdrawal(r.Context(), req.ToUseCaseInput(middleware.TenantID(r.Context()), r.Header.Get(IdempotencyKeyHeader)))
	writeOperationResult(w, batchID, err)
}

// Lock handles POST /ledger/locks.
func (h *LedgerHandler) Lock(w http.ResponseWriter, r *http.Request) {
	var req dto.LockRequest
	if !decodeOperation(w, r, &req) {
		return
	}

	batchID, err := h.ledger.LockFunds(r.Context(), req.ToUseCaseInput(middleware.TenantID(r.Context()), r.Header.Get(IdempotencyKeyHeader)))
	writeOperationResult(w, batchID, err)
}

// Release handles POST /ledger/releases.
func (h *LedgerHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req dto.ReleaseRequest
	if !decodeOperation(w, r, &req) {
		return
	}

	batchID, err := h.ledger.ReleaseFunds(r.Context(), req.ToUseCaseInput(middleware.TenantID(r.Context()), r.Header.Get(IdempotencyKeyHeader)))
	writeOperationResult(w, batchID, err)
}

// Refund handles POST /ledger/refunds.
func (h *LedgerHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if !decodeOperation(w, r, &req) {
		return
	}

	batchID, err := h.ledger.RefundFunds(r.Context(), req.ToUseCaseInput(middleware.TenantID(r.Context()), r.Header.Get(IdempotencyKeyHeader)))
	writeOperationResult(w, batchID, err)
}

func decodeOperation(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return false
	}
	return true
}

func writeOperationResult(w http.ResponseWriter, batchID string, err error) {
	if err != nil {
		if errors.Is(err, usecase.ErrIdempotencyKeyRequired) {
			writeError(w, http.StatusBadRequest, "Bad Request", IdempotencyKeyHeader+" header is required")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LedgerOperationResponse{BatchID: batchID})
}
