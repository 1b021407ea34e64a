package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/escrowpay/ledger/internal/domain"
)

// ErrIdempotencyKeyRequired is returned when a ledger operation is called
// without the idempotency key that makes its retries safe.
var ErrIdempotencyKeyRequired = errors.New("idempotency key is required")

// LedgerService is the narrow ledger-operations surface consumed by the
// escrow workflow: deposits, withdrawals and the escrow lock / release /
// refund cycle, each expressed as one balanced posting.
type LedgerService struct {
	messages *MessageService
	postings *PostingService
	logger   zerolog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(messages *MessageService, postings *PostingService, logger zerolog.Logger) *LedgerService {
	return &LedgerService{messages: messages, postings: postings, logger: logger}
}

// DepositInput credits a wallet from the tenant's funding account.
type DepositInput struct {
	TenantID         string
	WalletAccountID  string
	FundingAccountID string
	Amount           int64
	CorrelationID    string
	IdempotencyKey   string
}

// RecordDeposit posts a deposit: debit funding, credit wallet.
func (uc *LedgerService) RecordDeposit(ctx context.Context, input DepositInput) (string, error) {
	entries := []domain.EntryInput{
		{AccountID: input.FundingAccountID, Direction: domain.DirectionDebit, Amount: input.Amount, Description: "deposit funding", Metadata: correlationMetadata(input.CorrelationID, "")},
		{AccountID: input.WalletAccountID, Direction: domain.DirectionCredit, Amount: input.Amount, Description: "deposit", Metadata: correlationMetadata(input.CorrelationID, "")},
	}

	return uc.execute(ctx, input.TenantID, domain.ProcessingCodeDeposit, entries, input.IdempotencyKey)
}

// WithdrawalInput debits a wallet back to the tenant's funding account.
type WithdrawalInput struct {
	TenantID         string
	WalletAccountID  string
	FundingAccountID string
	Amount           int64
	CorrelationID    string
	IdempotencyKey   string
}

// RecordWithdrawal posts a withdrawal: debit wallet, credit funding.
func (uc *LedgerService) RecordWithdrawal(ctx context.Context, input WithdrawalInput) (string, error) {
	entries := []domain.EntryInput{
		{AccountID: input.WalletAccountID, Direction: domain.DirectionDebit, Amount: input.Amount, Description: "withdrawal", Metadata: correlationMetadata(input.CorrelationID, "")},
		{AccountID: input.FundingAccountID, Direction: domain.DirectionCredit, Amount: input.Amount, Description: "withdrawal funding", Metadata: correlationMetadata(input.CorrelationID, "")},
	}

	return uc.execute(ctx, input.TenantID, domain.ProcessingCodeWithdrawal, entries, input.IdempotencyKey)
}

// LockInput moves funds from a payer wallet into escrow (AUTH).
type LockInput struct {
	TenantID        string
	PayerAccountID  string
	EscrowAccountID string
	Amount          int64
	EscrowID        string
	IdempotencyKey  string
}

// LockFunds posts an escrow lock: debit payer wallet, credit escrow.
func (uc *LedgerService) LockFunds(ctx context.Context, input LockInput) (string, error) {
	entries := []domain.EntryInput{
		{AccountID: input.PayerAccountID, Direction: domain.DirectionDebit, Amount: input.Amount, Description: "escrow lock", Metadata: correlationMetadata(input.EscrowID, "")},
		{AccountID: input.EscrowAccountID, Direction: domain.DirectionCredit, Amount: input.Amount, Description: "escrow lock", Metadata: correlationMetadata(input.EscrowID, "")},
	}

	return uc.execute(ctx, input.TenantID, domain.ProcessingCodeEscrowLock, entries, input.IdempotencyKey)
}

// ReleaseInput settles escrowed funds to the payee (PRESENTMENT), with an
// optional fee split and a reference to the original AUTH batch.
type ReleaseInput struct {
	TenantID        string
	EscrowAccountID string
	PayeeAccountID  string
	FeeAccountID    string
	Amount          int64
	FeeAmount       int64
	EscrowID        string
	AuthBatchID     string
	IdempotencyKey  string
}

// ReleaseFunds posts an escrow release: debit escrow for the full amount,
// credit the payee net of fee, credit fee revenue for the fee.
func (uc *LedgerService) ReleaseFunds(ctx context.Context, input ReleaseInput) (string, error) {
	if input.FeeAmount < 0 || input.FeeAmount >= input.Amount {
		return "", domain.ErrInvalidAmount
	}

	meta := correlationMetadata(input.EscrowID, input.AuthBatchID)

	entries := []domain.EntryInput{
		{AccountID: input.EscrowAccountID, Direction: domain.DirectionDebit, Amount: input.Amount, Description: "escrow release", Metadata: meta},
		{AccountID: input.PayeeAccountID, Direction: domain.DirectionCredit, Amount: input.Amount - input.FeeAmount, Description: "escrow release", Metadata: meta},
	}

	if input.FeeAmount > 0 {
		if input.FeeAccountID == "" {
			return "", domain.ErrAccountNotFound
		}
		entries = append(entries, domain.EntryInput{
			AccountID: input.FeeAccountID, Direction: domain.DirectionCredit, Amount: input.FeeAmount,
			Description: "platform fee", Metadata: meta,
		})
	}

	return uc.execute(ctx, input.TenantID, domain.ProcessingCodeEscrowRelease, entries, input.IdempotencyKey)
}

// RefundInput returns escrowed funds to the payer (REVERSAL), optionally
// referencing the original AUTH batch and marking its message reversed.
type RefundInput struct {
	TenantID          string
	EscrowAccountID   string
	PayerAccountID    string
	Amount            int64
	EscrowID          string
	AuthBatchID       string
	OriginalMessageID string
	IdempotencyKey    string
}

// RefundFunds posts an escrow refund: debit escrow, credit payer wallet.
func (uc *LedgerService) RefundFunds(ctx context.Context, input RefundInput) (string, error) {
	meta := correlationMetadata(input.EscrowID, input.AuthBatchID)

	entries := []domain.EntryInput{
		{AccountID: input.EscrowAccountID, Direction: domain.DirectionDebit, Amount: input.Amount, Description: "escrow refund", Metadata: meta},
		{AccountID: input.PayerAccountID, Direction: domain.DirectionCredit, Amount: input.Amount, Description: "escrow refund", Metadata: meta},
	}

	batchID, err := uc.execute(ctx, input.TenantID, domain.ProcessingCodeEscrowRefund, entries, input.IdempotencyKey)
	if err != nil {
		return "", err
	}

	if input.OriginalMessageID != "" {
		if err := uc.messages.ReverseMessage(ctx, input.TenantID, input.OriginalMessageID); err != nil {
			// The refund batch is committed; a reversal marker failure is
			// reported, never rolled back.
			uc.logger.Error().Err(err).
				Str("message_id", input.OriginalMessageID).
				Str("refund_batch_id", batchID).
				Msg("failed to mark original message reversed")
		}
	}

	return batchID, nil
}

// execute runs the shared intake-post-complete cycle for one operation.
func (uc *LedgerService) execute(ctx context.Context, tenantID string, code domain.ProcessingCode, entries []domain.EntryInput, idempotencyKey string) (string, error) {
	if idempotencyKey == "" {
		return "", ErrIdempotencyKeyRequired
	}

	if err := domain.ValidateEntries(entries); err != nil {
		return "", err
	}

	msg, err := uc.messages.CreateMessage(ctx, tenantID, code)
	if err != nil {
		return "", err
	}

	result, err := uc.postings.Post(ctx, PostInput{
		MessageID:      msg.ID,
		TenantID:       tenantID,
		ProcessingCode: code,
		Entries:        entries,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return "", err
	}

	if result.Replayed {
		// The batch belongs to an earlier message; this intake never
		// posted. Record it as a duplicate rather than leaving it open.
		uc.postings.failMessage(ctx, msg, domain.ResponseDuplicate)
		return result.BatchID, nil
	}

	if err := uc.messages.CompleteMessage(ctx, tenantID, msg.ID); err != nil {
		uc.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to complete message")
	}

	return result.BatchID, nil
}

func correlationMetadata(correlationID, authBatchID string) map[string]any {
	if correlationID == "" && authBatchID == "" {
		return nil
	}

	meta := make(map[string]any, 2)
	if correlationID != "" {
		meta["correlation_id"] = correlationID
	}
	if authBatchID != "" {
		meta["auth_batch_id"] = authBatchID
	}

	return meta
}
