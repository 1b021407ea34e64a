package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	adaptershttp "github.com/escrowpay/ledger/internal/adapter/http"
	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/adapter/http/handler"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	redisRepo "github.com/escrowpay/ledger/internal/adapter/repository/redis"
	"github.com/escrowpay/ledger/internal/domain"
)

func newAPIServer(t *testing.T, stack *ledgerStack) http.Handler {
	t.Helper()

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(stack.Accounts, stack.Queries),
		LedgerHandler:      handler.NewLedgerHandler(stack.Ledger),
		MessageHandler:     handler.NewMessageHandler(stack.Messages, stack.Queries),
		BatchHandler:       handler.NewBatchHandler(stack.Queries),
		ConsistencyHandler: handler.NewConsistencyHandler(stack.Consistency),
		HealthHandler:      handler.NewHealthHandler(stack.DB.Pool, stack.Redis),
		Logging:            middleware.NewLoggingMiddleware(zerolog.Nop()),
		IdempotencyStore:   redisRepo.NewIdempotencyStore(stack.Redis),
	})
}

func apiRequest(router http.Handler, method, path, tenant, idempotencyKey string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(middleware.TenantHeader, tenant)
	if idempotencyKey != "" {
		req.Header.Set(handler.IdempotencyKeyHeader, idempotencyKey)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAPIDepositFlow(t *testing.T) {
	stack := newLedgerStack(t)
	ctx := context.Background()
	router := newAPIServer(t, stack)

	const tenant = "tenant-api"

	// Flush any idempotency reservations left by earlier runs.
	stack.Redis.FlushDB(ctx)

	funding := stack.DB.CreateTestAccount(ctx, tenant, "funding", domain.AccountTypeLiability, "USD", 0)

	// Create the wallet over the API.
	rec := apiRequest(router, http.MethodPost, "/api/v1/accounts", tenant, "", dto.CreateAccountRequest{
		Name:     "api wallet",
		Type:     "asset",
		Currency: "USD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating account, got %d: %s", rec.Code, rec.Body.String())
	}

	var wallet dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &wallet); err != nil {
		t.Fatalf("failed to decode account: %v", err)
	}

	deposit := dto.DepositRequest{
		WalletAccountID:  wallet.ID,
		FundingAccountID: funding.ID,
		Amount:           4200,
	}

	first := apiRequest(router, http.MethodPost, "/api/v1/ledger/deposits", tenant, "api-dep-1", deposit)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 for deposit, got %d: %s", first.Code, first.Body.String())
	}

	var firstResp dto.LedgerOperationResponse
	if err := json.Unmarshal(first.Body.Bytes(), &firstResp); err != nil {
		t.Fatalf("failed to decode deposit response: %v", err)
	}

	// The retry replays the cached response without posting again.
	second := apiRequest(router, http.MethodPost, "/api/v1/ledger/deposits", tenant, "api-dep-1", deposit)
	if second.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected replayed response, got %d: %s", second.Code, second.Body.String())
	}

	var secondResp dto.LedgerOperationResponse
	if err := json.Unmarshal(second.Body.Bytes(), &secondResp); err != nil {
		t.Fatalf("failed to decode replayed response: %v", err)
	}
	if secondResp.BatchID != firstResp.BatchID {
		t.Fatalf("expected same batch on replay, got %s and %s", firstResp.BatchID, secondResp.BatchID)
	}

	if balance, _ := stack.DB.AccountBalance(ctx, wallet.ID); balance != 4200 {
		t.Fatalf("expected wallet credited once (4200), got %d", balance)
	}

	// Balance read over the API agrees.
	balanceRec := apiRequest(router, http.MethodGet, "/api/v1/accounts/"+wallet.ID+"/balance", tenant, "", nil)
	if balanceRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for balance, got %d", balanceRec.Code)
	}

	var balance dto.BalanceResponse
	if err := json.Unmarshal(balanceRec.Body.Bytes(), &balance); err != nil {
		t.Fatalf("failed to decode balance: %v", err)
	}
	if balance.Amount != 4200 || balance.Currency != "USD" {
		t.Fatalf("unexpected balance %+v", balance)
	}

	// A foreign tenant cannot see the account.
	foreign := apiRequest(router, http.MethodGet, "/api/v1/accounts/"+wallet.ID, "tenant-other", "", nil)
	if foreign.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign tenant, got %d", foreign.Code)
	}
}
