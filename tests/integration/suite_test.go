package integration

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	postgresRepo "github.com/escrowpay/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/escrowpay/ledger/internal/adapter/repository/redis"
	infraredis "github.com/escrowpay/ledger/internal/infrastructure/redis"
	"github.com/escrowpay/ledger/internal/usecase"
	"github.com/escrowpay/ledger/tests/testutil"
)

// ledgerStack wires the real services against the test database. Metrics
// are left nil so repeated stacks do not fight over the prometheus
// registry.
type ledgerStack struct {
	DB          *testutil.TestDB
	Redis       *redis.Client
	Accounts    *usecase.AccountService
	Messages    *usecase.MessageService
	Postings    *usecase.PostingService
	Ledger      *usecase.LedgerService
	Consistency *usecase.ConsistencyService
	Queries     *usecase.QueryService
	OutboxRepo  usecase.OutboxRepository
}

func newLedgerStack(t *testing.T) *ledgerStack {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, infraredis.Config{URL: redisURL})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	pool := testDB.Pool
	log := zerolog.Nop()

	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	messageRepo := postgresRepo.NewMessageRepository(pool)
	batchRepo := postgresRepo.NewBatchRepository(pool)
	lineRepo := postgresRepo.NewLineRepository(pool)
	idemRepo := postgresRepo.NewIdempotencyRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	cache := redisRepo.NewCache(redisClient)
	sequences := redisRepo.NewSequenceProvider(redisClient)

	messages := usecase.NewMessageService(messageRepo, auditRepo, outboxRepo, sequences, idGen, nil, log)
	postings := usecase.NewPostingService(
		txManager, accountRepo, batchRepo, lineRepo, messageRepo,
		idemRepo, outboxRepo, auditRepo, idGen, retrier, cache, nil, log,
	)

	return &ledgerStack{
		DB:          testDB,
		Redis:       redisClient,
		Accounts:    usecase.NewAccountService(accountRepo, auditRepo, idGen, cache, nil, log),
		Messages:    messages,
		Postings:    postings,
		Ledger:      usecase.NewLedgerService(messages, postings, log),
		Consistency: usecase.NewConsistencyService(ledgerRepo),
		Queries:     usecase.NewQueryService(batchRepo, lineRepo),
		OutboxRepo:  outboxRepo,
	}
}
