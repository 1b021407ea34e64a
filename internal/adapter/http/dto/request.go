package dto

import (
	"github.com/escrowpay/ledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

// DepositRequest credits a wallet from the tenant's funding account.
type DepositRequest struct {
	WalletAccountID  string `json:"wallet_account_id"`
	FundingAccountID string `json:"funding_account_id"`
	Amount           int64  `json:"amount"`
	CorrelationID    string `json:"correlation_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(tenantID, idempotencyKey string) usecase.DepositInput {
	return usecase.DepositInput{
		TenantID:         tenantID,
		WalletAccountID:  r.WalletAccountID,
		FundingAccountID: r.FundingAccountID,
		Amount:           r.Amount,
		CorrelationID:    r.CorrelationID,
		IdempotencyKey:   idempotencyKey,
	}
}

// WithdrawalRequest debits a wallet back to the tenant's funding account.
type WithdrawalRequest struct {
	WalletAccountID  string `json:"wallet_account_id"`
	FundingAccountID string `json:"funding_account_id"`
	Amount           int64  `json:"amount"`
	CorrelationID    string `json:"correlation_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawalRequest) ToUseCaseInput(tenantID, idempotencyKey string) usecase.WithdrawalInput {
	return usecase.WithdrawalInput{
		TenantID:         tenantID,
		WalletAccountID:  r.WalletAccountID,
		FundingAccountID: r.FundingAccountID,
		Amount:           r.Amount,
		CorrelationID:    r.CorrelationID,
		IdempotencyKey:   idempotencyKey,
	}
}

// LockRequest moves funds from a payer wallet into escrow.
type LockRequest struct {
	PayerAccountID  string `json:"payer_account_id"`
	EscrowAccountID string `json:"escrow_account_id"`
	Amount          int64  `json:"amount"`
	EscrowID        string `json:"escrow_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *LockRequest) ToUseCaseInput(tenantID, idempotencyKey string) usecase.LockInput {
	return usecase.LockInput{
		TenantID:        tenantID,
		PayerAccountID:  r.PayerAccountID,
		EscrowAccountID: r.EscrowAccountID,
		Amount:          r.Amount,
		EscrowID:        r.EscrowID,
		IdempotencyKey:  idempotencyKey,
	}
}

// ReleaseRequest settles escrowed funds to the payee with an optional fee.
type ReleaseRequest struct {
	EscrowAccountID string `json:"escrow_account_id"`
	PayeeAccountID  string `json:"payee_account_id"`
	FeeAccountID    string `json:"fee_account_id,omitempty"`
	Amount          int64  `json:"amount"`
	FeeAmount       int64  `json:"fee_amount,omitempty"`
	EscrowID        string `json:"escrow_id,omitempty"`
	AuthBatchID     string `json:"auth_batch_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReleaseRequest) ToUseCaseInput(tenantID, idempotencyKey string) usecase.ReleaseInput {
	return usecase.ReleaseInput{
		TenantID:        tenantID,
		EscrowAccountID: r.EscrowAccountID,
		PayeeAccountID:  r.PayeeAccountID,
		FeeAccountID:    r.FeeAccountID,
		Amount:          r.Amount,
		FeeAmount:       r.FeeAmount,
		EscrowID:        r.EscrowID,
		AuthBatchID:     r.AuthBatchID,
		IdempotencyKey:  idempotencyKey,
	}
}

// RefundRequest returns escrowed funds to the payer.
type RefundRequest struct {
	EscrowAccountID   string `json:"escrow_account_id"`
	PayerAccountID    string `json:"payer_account_id"`
	Amount            int64  `json:"amount"`
	EscrowID          string `json:"escrow_id,omitempty"`
	AuthBatchID       string `json:"auth_batch_id,omitempty"`
	OriginalMessageID string `json:"original_message_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RefundRequest) ToUseCaseInput(tenantID, idempotencyKey string) usecase.RefundInput {
	return usecase.RefundInput{
		TenantID:          tenantID,
		EscrowAccountID:   r.EscrowAccountID,
		PayerAccountID:    r.PayerAccountID,
		Amount:            r.Amount,
		EscrowID:          r.EscrowID,
		AuthBatchID:       r.AuthBatchID,
		OriginalMessageID: r.OriginalMessageID,
		IdempotencyKey:    idempotencyKey,
	}
}
