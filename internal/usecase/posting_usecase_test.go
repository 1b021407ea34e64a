package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
	"github.com/escrowpay/ledger/internal/usecase/mocks"
)

type postingFixture struct {
	svc         *usecase.PostingService
	txManager   *mocks.MockTransactionManager
	accountRepo *mocks.MockAccountRepository
	batchRepo   *mocks.MockBatchRepository
	lineRepo    *mocks.MockLineRepository
	messageRepo *mocks.MockMessageRepository
	idemRepo    *mocks.MockIdempotencyRepository
	outboxRepo  *mocks.MockOutboxRepository
	auditRepo   *mocks.MockAuditRepository
	cache       *mocks.MockCache
}

func newPostingFixture() *postingFixture {
	f := &postingFixture{
		txManager:   mocks.NewMockTransactionManager(),
		accountRepo: mocks.NewMockAccountRepository(),
		batchRepo:   mocks.NewMockBatchRepository(),
		lineRepo:    mocks.NewMockLineRepository(),
		messageRepo: mocks.NewMockMessageRepository(),
		idemRepo:    mocks.NewMockIdempotencyRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
		cache:       mocks.NewMockCache(),
	}

	f.svc = usecase.NewPostingService(
		f.txManager,
		f.accountRepo,
		f.batchRepo,
		f.lineRepo,
		f.messageRepo,
		f.idemRepo,
		f.outboxRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
		nil,
		f.cache,
		nil,
		zerolog.Nop(),
	)

	return f
}

func (f *postingFixture) seedAccount(id string, accType domain.AccountType, balance int64) {
	f.accountRepo.Seed(&domain.Account{
		ID:       id,
		TenantID: "tenant-1",
		Name:     id,
		Type:     accType,
		Currency: "USD",
		Balance:  balance,
	})
}

func (f *postingFixture) seedMessage(id string) {
	f.messageRepo.Seed(&domain.FinancialMessage{
		ID:             id,
		TenantID:       "tenant-1",
		STAN:           "250314000001",
		RRN:            "250314150926ABCDEF",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Phase:          domain.PhaseInitiated,
	})
}

func TestPostingService_Post_Success(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-funding", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-wallet", domain.AccountTypeAsset, 2000)
	f.seedMessage("msg-1")

	result, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-funding", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-wallet", Direction: domain.DirectionCredit, Amount: 1000},
		},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, domain.ResponseApproved, result.ResponseCode)
	assert.False(t, result.Replayed)
	assert.NotEmpty(t, result.BatchID)

	// Debit decreases, credit increases.
	funding, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-funding")
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), funding.Balance)
	assert.Equal(t, int64(1), funding.Version)

	wallet, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), wallet.Balance)

	assert.Equal(t, 1, f.batchRepo.Count())
	assert.Len(t, f.lineRepo.All(), 2)
	assert.Equal(t, domain.PhasePosted, f.messageRepo.Phase("msg-1"))

	require.Len(t, f.txManager.Txs, 1)
	assert.True(t, f.txManager.Txs[0].Committed)

	events := f.outboxRepo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeBatchPosted, events[0].EventType)
	assert.Equal(t, result.BatchID, events[0].AggregateID)
}

func TestPostingService_Post_BatchTotals(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-escrow", domain.AccountTypeLiability, 10000)
	f.seedAccount("acc-payee", domain.AccountTypeAsset, 0)
	f.seedAccount("acc-fee", domain.AccountTypeRevenue, 0)
	f.seedMessage("msg-1")

	// Three-way release: escrow debit balances payee + fee credits.
	result, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeEscrowRelease,
		Entries: []domain.EntryInput{
			{AccountID: "acc-escrow", Direction: domain.DirectionDebit, Amount: 10000},
			{AccountID: "acc-payee", Direction: domain.DirectionCredit, Amount: 9700},
			{AccountID: "acc-fee", Direction: domain.DirectionCredit, Amount: 300},
		},
	})
	require.NoError(t, err)

	batch, err := f.batchRepo.GetByID(context.Background(), result.BatchID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), batch.TotalDebits)
	assert.Equal(t, int64(10000), batch.TotalCredits)
	assert.Equal(t, 3, batch.EntryCount)
}

func TestPostingService_Post_Imbalance(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeAsset, 5000)
	f.seedAccount("acc-b", domain.AccountTypeAsset, 5000)
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 999},
		},
	})
	require.ErrorIs(t, err, domain.ErrDoubleEntryImbalance)

	// Validation fails before any lock or write.
	assert.Empty(t, f.txManager.Txs)
	assert.Equal(t, 0, f.batchRepo.Count())
	assert.Empty(t, f.lineRepo.All())
	assert.Equal(t, domain.PhaseFailed, f.messageRepo.Phase("msg-1"))

	acc, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-a")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), acc.Balance)
}

func TestPostingService_Post_InsufficientFunds(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-wallet", domain.AccountTypeAsset, 500)
	f.seedAccount("acc-escrow", domain.AccountTypeLiability, 0)
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeEscrowLock,
		Entries: []domain.EntryInput{
			{AccountID: "acc-wallet", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-escrow", Direction: domain.DirectionCredit, Amount: 1000},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The transaction aborted without a commit and no balance moved.
	require.Len(t, f.txManager.Txs, 1)
	assert.False(t, f.txManager.Txs[0].Committed)
	assert.True(t, f.txManager.Txs[0].RolledBack)
	assert.Equal(t, 0, f.batchRepo.Count())

	wallet, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(500), wallet.Balance)

	assert.Equal(t, domain.PhaseFailed, f.messageRepo.Phase("msg-1"))
}

func TestPostingService_Post_LiabilityMayGoNegative(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-funding", domain.AccountTypeLiability, 100)
	f.seedAccount("acc-wallet", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-funding", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-wallet", Direction: domain.DirectionCredit, Amount: 1000},
		},
	})
	require.NoError(t, err)

	funding, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-funding")
	require.NoError(t, err)
	assert.Equal(t, int64(-900), funding.Balance)
}

func TestPostingService_Post_IdempotentReplay(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-b", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")
	f.seedMessage("msg-2")

	input := usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 1000},
		},
		IdempotencyKey: "key-1",
	}

	first, err := f.svc.Post(context.Background(), input)
	require.NoError(t, err)

	// Same key, different message: the recorded result comes back and
	// nothing executes again.
	input.MessageID = "msg-2"
	second, err := f.svc.Post(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.BatchID, second.BatchID)
	assert.Equal(t, domain.ResponseApproved, second.ResponseCode)
	assert.True(t, second.Replayed)

	assert.Equal(t, 1, f.batchRepo.Count())
	assert.Len(t, f.lineRepo.All(), 2)

	acc, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acc.Balance)
}

func TestPostingService_Post_CreditDoesNotFundDebit(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-wallet", domain.AccountTypeAsset, 100)
	f.seedAccount("acc-funding", domain.AccountTypeLiability, 0)
	f.seedMessage("msg-1")

	// The credit comes first in the batch, but only money already on the
	// wallet may cover the debit.
	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeAdjustment,
		Entries: []domain.EntryInput{
			{AccountID: "acc-wallet", Direction: domain.DirectionCredit, Amount: 500},
			{AccountID: "acc-wallet", Direction: domain.DirectionDebit, Amount: 600},
			{AccountID: "acc-funding", Direction: domain.DirectionDebit, Amount: 500},
			{AccountID: "acc-funding", Direction: domain.DirectionCredit, Amount: 600},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, 0, f.batchRepo.Count())

	wallet, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(100), wallet.Balance)
}

func TestPostingService_Post_SameAccountTwiceVersionsOnce(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-wallet", domain.AccountTypeAsset, 1000)
	f.seedMessage("msg-1")

	// Both entries land on the same account; each entry bumps the
	// version exactly once.
	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeAdjustment,
		Entries: []domain.EntryInput{
			{AccountID: "acc-wallet", Direction: domain.DirectionDebit, Amount: 400},
			{AccountID: "acc-wallet", Direction: domain.DirectionCredit, Amount: 400},
		},
	})
	require.NoError(t, err)

	wallet, err := f.accountRepo.GetByID(context.Background(), "tenant-1", "acc-wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), wallet.Balance)
	assert.Equal(t, int64(2), wallet.Version)
}

func TestPostingService_Post_KeysAreTenantScoped(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-b", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")

	f.accountRepo.Seed(&domain.Account{ID: "acc-c", TenantID: "tenant-2", Type: domain.AccountTypeLiability, Currency: "USD"})
	f.accountRepo.Seed(&domain.Account{ID: "acc-d", TenantID: "tenant-2", Type: domain.AccountTypeAsset, Currency: "USD"})
	f.messageRepo.Seed(&domain.FinancialMessage{
		ID:             "msg-2",
		TenantID:       "tenant-2",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Phase:          domain.PhaseInitiated,
	})

	first, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 1000},
		},
		IdempotencyKey: "shared-key",
	})
	require.NoError(t, err)

	// Another tenant presenting the same caller-supplied key must get
	// its own fresh posting, never the first tenant's batch.
	second, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-2",
		TenantID:       "tenant-2",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-c", Direction: domain.DirectionDebit, Amount: 700},
			{AccountID: "acc-d", Direction: domain.DirectionCredit, Amount: 700},
		},
		IdempotencyKey: "shared-key",
	})
	require.NoError(t, err)

	assert.False(t, second.Replayed)
	assert.NotEqual(t, first.BatchID, second.BatchID)
	assert.Equal(t, 2, f.batchRepo.Count())

	acc, err := f.accountRepo.GetByID(context.Background(), "tenant-2", "acc-d")
	require.NoError(t, err)
	assert.Equal(t, int64(700), acc.Balance)
}

func TestPostingService_Post_ExpiredKeyIsReclaimed(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-b", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")

	f.idemRepo.Seed(&domain.IdempotencyRecord{
		Key:          "key-1",
		TenantID:     "tenant-1",
		BatchID:      "batch-stale",
		ResponseCode: domain.ResponseApproved,
		CreatedAt:    time.Now().UTC().Add(-48 * time.Hour),
		ExpiresAt:    time.Now().UTC().Add(-24 * time.Hour),
	})

	result, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 1000},
		},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	// The stale reservation is overwritten, not a permanent tombstone.
	assert.False(t, result.Replayed)
	assert.NotEqual(t, "batch-stale", result.BatchID)
	assert.Equal(t, 1, f.batchRepo.Count())
	assert.Equal(t, domain.PhasePosted, f.messageRepo.Phase("msg-1"))

	record, err := f.idemRepo.Get(context.Background(), "tenant-1", "key-1")
	require.NoError(t, err)
	assert.Equal(t, result.BatchID, record.BatchID)
	assert.False(t, record.Expired(time.Now().UTC()))
}

func TestPostingService_Post_DuplicateKeyRace(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-b", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")

	// The winner committed between our short-circuit read and our insert.
	winner := &domain.IdempotencyRecord{
		Key:          "key-1",
		TenantID:     "tenant-1",
		BatchID:      "batch-winner",
		ResponseCode: domain.ResponseApproved,
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}

	var reads int
	f.idemRepo.GetFunc = func(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error) {
		reads++
		if reads == 1 {
			return nil, nil
		}
		return winner, nil
	}
	f.idemRepo.CreateTxFunc = func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
		return domain.ErrDuplicateIdempotencyKey
	}

	result, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 1000},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 1000},
		},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "batch-winner", result.BatchID)
	assert.True(t, result.Replayed)

	// Our own attempt rolled back.
	require.Len(t, f.txManager.Txs, 1)
	assert.False(t, f.txManager.Txs[0].Committed)
}

func TestPostingService_Post_LockOrderSorted(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-z", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-a", domain.AccountTypeAsset, 0)
	f.seedAccount("acc-m", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-z", Direction: domain.DirectionDebit, Amount: 500},
			{AccountID: "acc-m", Direction: domain.DirectionCredit, Amount: 250},
			{AccountID: "acc-a", Direction: domain.DirectionCredit, Amount: 250},
		},
	})
	require.NoError(t, err)

	require.Len(t, f.accountRepo.LockOrder, 1)
	assert.Equal(t, []string{"acc-a", "acc-m", "acc-z"}, f.accountRepo.LockOrder[0])
}

func TestPostingService_Post_AccountNotFound(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeLiability, 0)
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 100},
			{AccountID: "acc-missing", Direction: domain.DirectionCredit, Amount: 100},
		},
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, 0, f.batchRepo.Count())
	assert.Equal(t, domain.PhaseFailed, f.messageRepo.Phase("msg-1"))
}

func TestPostingService_Post_TenantMismatch(t *testing.T) {
	f := newPostingFixture()
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-other",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 100},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 100},
		},
	})
	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestPostingService_Post_CurrencyMismatch(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-usd", domain.AccountTypeLiability, 0)
	f.accountRepo.Seed(&domain.Account{
		ID:       "acc-eur",
		TenantID: "tenant-1",
		Type:     domain.AccountTypeAsset,
		Currency: "EUR",
	})
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-usd", Direction: domain.DirectionDebit, Amount: 100},
			{AccountID: "acc-eur", Direction: domain.DirectionCredit, Amount: 100},
		},
	})
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	assert.Equal(t, 0, f.batchRepo.Count())
}

func TestPostingService_Post_InquiryHasNoLedgerEntry(t *testing.T) {
	f := newPostingFixture()
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeInquiry,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 100},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 100},
		},
	})
	require.ErrorIs(t, err, domain.ErrNoLedgerEntry)
}

func TestPostingService_Post_InvalidatesBalanceCache(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-b", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 100},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 100},
		},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"balance:acc-a", "balance:acc-b"}, f.cache.Deletes)
}

func TestPostingService_Post_CommitFailure(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-a", domain.AccountTypeLiability, 0)
	f.seedAccount("acc-b", domain.AccountTypeAsset, 0)
	f.seedMessage("msg-1")

	commitErr := errors.New("connection reset")
	f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		return &mocks.MockTransaction{
			CommitFunc: func(ctx context.Context) error { return commitErr },
		}, nil
	}

	_, err := f.svc.Post(context.Background(), usecase.PostInput{
		MessageID:      "msg-1",
		TenantID:       "tenant-1",
		ProcessingCode: domain.ProcessingCodeDeposit,
		Entries: []domain.EntryInput{
			{AccountID: "acc-a", Direction: domain.DirectionDebit, Amount: 100},
			{AccountID: "acc-b", Direction: domain.DirectionCredit, Amount: 100},
		},
	})
	require.ErrorIs(t, err, commitErr)
	assert.Equal(t, domain.PhaseFailed, f.messageRepo.Phase("msg-1"))
}
