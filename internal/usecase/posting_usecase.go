package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/infrastructure/metrics"
)

// PostingService executes the atomic double-entry posting protocol. It is
// the only component allowed to mutate account balances, and it owns the
// LOCKED -> POSTED message phase transition.
type PostingService struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	batchRepo   BatchRepository
	lineRepo    LineRepository
	messageRepo MessageRepository
	idemRepo    IdempotencyRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	cache       Cache
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewPostingService creates a new PostingService.
func NewPostingService(
	txManager TransactionManager,
	accountRepo AccountRepository,
	batchRepo BatchRepository,
	lineRepo LineRepository,
	messageRepo MessageRepository,
	idemRepo IdempotencyRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PostingService {
	return &PostingService{
		txManager:   txManager,
		accountRepo: accountRepo,
		batchRepo:   batchRepo,
		lineRepo:    lineRepo,
		messageRepo: messageRepo,
		idemRepo:    idemRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		retrier:     retrier,
		cache:       cache,
		metrics:     m,
		logger:      logger,
	}
}

// PostInput carries one posting request.
type PostInput struct {
	MessageID      string
	TenantID       string
	ProcessingCode domain.ProcessingCode
	Entries        []domain.EntryInput
	IdempotencyKey string
}

// PostResult is the public-facing outcome of a posting call. Replayed is
// set when the result came from an idempotency record rather than a fresh
// execution.
type PostResult struct {
	BatchID      string
	ResponseCode domain.ResponseCode
	Replayed     bool
}

// Post applies a balanced set of entries as one atomic unit of work.
// Either every write lands, or none do. Retried calls carrying the same
// idempotency key return the first successful result without re-executing.
func (uc *PostingService) Post(ctx context.Context, input PostInput) (*PostResult, error) {
	start := time.Now()

	// 1. Idempotency short-circuit: a committed, unexpired record wins.
	if input.IdempotencyKey != "" {
		if result, ok, err := uc.cachedResult(ctx, input.TenantID, input.IdempotencyKey); err != nil {
			return nil, err
		} else if ok {
			if uc.metrics != nil {
				uc.metrics.PostingsReplayed.Inc()
			}
			return result, nil
		}
	}

	msg, err := uc.messageRepo.GetByID(ctx, input.MessageID)
	if err != nil {
		return nil, err
	}

	if msg.TenantID != input.TenantID {
		return nil, domain.ErrMessageNotFound
	}

	// 2. Validation: processing code and double-entry balance, before any
	// lock is taken.
	if err := uc.validate(input); err != nil {
		uc.failMessage(ctx, msg, responseCodeFor(err))
		uc.observeError(err)
		return nil, err
	}

	if err := uc.advancePhase(ctx, msg, domain.PhaseValidated); err != nil {
		return nil, err
	}

	var result *PostResult

	execute := func() error {
		var execErr error
		result, execErr = uc.executeOnce(ctx, msg, input)
		return execErr
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, execute)
	} else {
		err = execute()
	}

	if err != nil {
		// A concurrent call with the same key won the race; return its
		// committed result verbatim.
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) && input.IdempotencyKey != "" {
			if cached, ok, cacheErr := uc.cachedResult(ctx, input.TenantID, input.IdempotencyKey); cacheErr == nil && ok {
				return cached, nil
			}
		}

		uc.failMessage(ctx, msg, responseCodeFor(err))
		uc.observeError(err)

		return nil, err
	}

	uc.invalidateBalances(ctx, input.Entries)

	if uc.metrics != nil {
		uc.metrics.PostingsCreated.Inc()
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())

		debits, _ := domain.EntryTotals(input.Entries)
		uc.metrics.PostingAmount.Observe(float64(debits))
	}

	uc.logger.Info().
		Str("message_id", msg.ID).
		Str("tenant_id", msg.TenantID).
		Str("batch_id", result.BatchID).
		Str("processing_code", string(input.ProcessingCode)).
		Msg("posting committed")

	return result, nil
}

func (uc *PostingService) validate(input PostInput) error {
	if !input.ProcessingCode.Valid() {
		return domain.ErrNoLedgerEntry
	}

	if !input.ProcessingCode.RequiresLedgerEntry() {
		return domain.ErrNoLedgerEntry
	}

	return domain.ValidateEntries(input.Entries)
}

// executeOnce runs steps 3-9 of the posting protocol inside one database
// transaction.
func (uc *PostingService) executeOnce(ctx context.Context, msg *domain.FinancialMessage, input PostInput) (*PostResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	// Phase transitions inside the transaction happen on a copy, so a
	// rolled-back attempt leaves the in-memory message where the database
	// still has it.
	attempt := *msg

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// 3. Deterministic lock acquisition (DEADLOCK PREVENTION): lock the
	// distinct accounts in ascending id order, so concurrent postings
	// sharing accounts always queue in the same relative order.
	accountIDs := collectUniqueAccountIDs(input.Entries)
	sort.Strings(accountIDs)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, input.TenantID, accountIDs)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(accountIDs) {
		return nil, domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	// A batch moves one currency. Mixed-currency entry sets cannot net to
	// zero meaningfully.
	currency := accounts[0].Currency
	for _, a := range accounts {
		if a.Currency != currency {
			return nil, domain.ErrCurrencyMismatch
		}
	}

	// 4. Sufficiency: every debit must clear against the locked balance,
	// or the whole batch aborts. Credits elsewhere in the batch never
	// fund a debit; only money already on the account counts.
	debited := make(map[string]int64, len(accounts))
	for _, e := range input.Entries {
		if e.Direction != domain.DirectionDebit {
			continue
		}

		acc := accountMap[e.AccountID]
		if !acc.Type.AllowsNegativeBalance() {
			if acc.Balance-debited[e.AccountID]-e.Amount < 0 {
				return nil, domain.ErrInsufficientFunds
			}
		}

		debited[e.AccountID] += e.Amount
	}

	now := time.Now().UTC()

	if err := uc.transitionTx(txCtx, tx, &attempt, domain.PhaseLocked, attempt.ResponseCode, now); err != nil {
		return nil, err
	}

	// 5. Batch header with computed totals.
	totalDebits, totalCredits := domain.EntryTotals(input.Entries)
	batch := &domain.PostingBatch{
		ID:             uc.idGen.Generate(),
		MessageID:      msg.ID,
		TenantID:       input.TenantID,
		ProcessingCode: input.ProcessingCode,
		TotalDebits:    totalDebits,
		TotalCredits:   totalCredits,
		EntryCount:     len(input.Entries),
		PostedAt:       now,
	}

	if err := uc.batchRepo.Create(txCtx, tx, batch); err != nil {
		return nil, err
	}

	// 6-7. One immutable line per entry; signed delta applied to each
	// account balance.
	for _, e := range input.Entries {
		line := &domain.LedgerLine{
			ID:          uc.idGen.Generate(),
			BatchID:     batch.ID,
			AccountID:   e.AccountID,
			Amount:      e.Amount,
			Direction:   e.Direction,
			Description: e.Description,
			Metadata:    e.Metadata,
			CreatedAt:   now,
		}

		if err := uc.lineRepo.Create(txCtx, tx, line); err != nil {
			return nil, err
		}

		acc := accountMap[e.AccountID]
		newBalance := acc.ApplyEntry(e.Direction, e.Amount)

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, acc.ID, newBalance, acc.Version+1, now); err != nil {
			return nil, err
		}

		acc.Balance = newBalance
		acc.Version++
	}

	// 8. The engine owns LOCKED -> POSTED.
	if err := uc.transitionTx(txCtx, tx, &attempt, domain.PhasePosted, domain.ResponseApproved, now); err != nil {
		return nil, err
	}
	attempt.ResponseCode = domain.ResponseApproved

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   batch.ID,
		AggregateType: domain.AggregateTypeBatch,
		EventType:     domain.EventTypeBatchPosted,
		Payload: map[string]any{
			"batch_id":        batch.ID,
			"message_id":      msg.ID,
			"tenant_id":       batch.TenantID,
			"processing_code": string(batch.ProcessingCode),
			"total_debits":    batch.TotalDebits,
			"total_credits":   batch.TotalCredits,
			"entry_count":     batch.EntryCount,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     input.TenantID,
			Action:       string(domain.AuditActionBatchPost),
			ResourceType: "posting_batch",
			ResourceID:   batch.ID,
			RequestID:    RequestIDFromContext(ctx),
			AfterState:   domain.MarshalState(batch),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	// 9. Reserve the idempotency key inside the same transaction. The
	// unique index serializes concurrent duplicates: the loser blocks on
	// the winner's row, gets ErrDuplicateIdempotencyKey once the winner
	// commits, and its entire unit of work rolls back.
	if input.IdempotencyKey != "" {
		record := &domain.IdempotencyRecord{
			Key:          input.IdempotencyKey,
			TenantID:     input.TenantID,
			BatchID:      batch.ID,
			ResponseCode: domain.ResponseApproved,
			CreatedAt:    now,
			ExpiresAt:    now.Add(IdempotencyKeyTTL),
		}
		if err := uc.idemRepo.CreateTx(txCtx, tx, record); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	*msg = attempt

	return &PostResult{BatchID: batch.ID, ResponseCode: domain.ResponseApproved}, nil
}

func (uc *PostingService) cachedResult(ctx context.Context, tenantID, key string) (*PostResult, bool, error) {
	record, err := uc.idemRepo.Get(ctx, tenantID, key)
	if err != nil {
		return nil, false, err
	}

	if record == nil || record.Expired(time.Now().UTC()) {
		return nil, false, nil
	}

	// A record from another tenant must never replay, whatever the
	// storage layer returned.
	if record.TenantID != tenantID {
		return nil, false, nil
	}

	return &PostResult{BatchID: record.BatchID, ResponseCode: record.ResponseCode, Replayed: true}, true, nil
}

// advancePhase persists a phase change outside the posting transaction.
func (uc *PostingService) advancePhase(ctx context.Context, msg *domain.FinancialMessage, next domain.Phase) error {
	if msg.Phase == next {
		return nil
	}

	if err := msg.TransitionTo(next); err != nil {
		return err
	}

	return uc.messageRepo.UpdatePhase(ctx, msg.ID, msg.Phase, msg.ResponseCode, time.Now().UTC())
}

func (uc *PostingService) transitionTx(ctx context.Context, tx Transaction, msg *domain.FinancialMessage, next domain.Phase, code domain.ResponseCode, now time.Time) error {
	if err := msg.TransitionTo(next); err != nil {
		return err
	}

	return uc.messageRepo.UpdatePhaseTx(ctx, tx, msg.ID, next, code, now)
}

// failMessage records a failed attempt on the message so history keeps
// every outcome, without leaving any ledger row behind. The posting
// transaction has already rolled back, so this write is standalone.
func (uc *PostingService) failMessage(ctx context.Context, msg *domain.FinancialMessage, code domain.ResponseCode) {
	if !msg.Phase.CanTransitionTo(domain.PhaseFailed) {
		return
	}

	msg.Phase = domain.PhaseFailed
	msg.ResponseCode = code

	now := time.Now().UTC()

	if err := uc.messageRepo.UpdatePhase(ctx, msg.ID, domain.PhaseFailed, code, now); err != nil {
		uc.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to record message failure")
		return
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   msg.ID,
			AggregateType: domain.AggregateTypeMessage,
			EventType:     domain.EventTypeMessageFailed,
			Payload: map[string]any{
				"message_id":    msg.ID,
				"tenant_id":     msg.TenantID,
				"response_code": string(code),
				"reason":        code.Description(),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.CreateStandalone(ctx, event); err != nil {
			uc.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to write failure event")
		}
	}
}

func (uc *PostingService) observeError(err error) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.PostingErrors.WithLabelValues(string(responseCodeFor(err))).Inc()
}

// invalidateBalances drops cached balance reads post-commit, best effort.
func (uc *PostingService) invalidateBalances(ctx context.Context, entries []domain.EntryInput) {
	if uc.cache == nil {
		return
	}

	for _, id := range collectUniqueAccountIDs(entries) {
		if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
			uc.logger.Warn().Err(err).Str("account_id", id).Msg("balance cache invalidation failed")
		}
	}
}

func balanceCacheKey(accountID string) string {
	return "balance:" + accountID
}

func collectUniqueAccountIDs(entries []domain.EntryInput) []string {
	seen := make(map[string]bool, len(entries))

	var ids []string
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}

	return ids
}

// responseCodeFor classifies an error for retry policy and audit. Exactly
// the infrastructure codes are retryable.
func responseCodeFor(err error) domain.ResponseCode {
	switch {
	case errors.Is(err, domain.ErrDoubleEntryImbalance),
		errors.Is(err, domain.ErrNoLedgerEntry),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrEmptyEntries),
		errors.Is(err, domain.ErrCurrencyMismatch):
		return domain.ResponseInvalidTransaction
	case errors.Is(err, domain.ErrInvalidAmount):
		return domain.ResponseInvalidAmount
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrMessageNotFound):
		return domain.ResponseNoAccount
	case errors.Is(err, domain.ErrInsufficientFunds):
		return domain.ResponseInsufficientFunds
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return domain.ResponseDuplicate
	case errors.Is(err, domain.ErrIllegalTransition):
		return domain.ResponseDoNotHonor
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ResponseTimeout
	default:
		return domain.ResponseSystemMalfunction
	}
}
