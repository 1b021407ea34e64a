package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

type accountServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn     func(ctx context.Context, tenantID, id string) (*domain.Account, error)
	balanceFn func(ctx context.Context, tenantID, id string) (domain.Money, error)
	listFn    func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	return s.getFn(ctx, tenantID, id)
}

func (s *accountServiceStub) GetBalance(ctx context.Context, tenantID, id string) (domain.Money, error) {
	return s.balanceFn(ctx, tenantID, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	return s.listFn(ctx, tenantID, limit, offset)
}

type lineServiceStub struct {
	linesFn func(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error)
}

func (s *lineServiceStub) ListAccountLines(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error) {
	return s.linesFn(ctx, accountID, limit, offset)
}

func tenantRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.WithTenant(req.Context(), "tenant-a"))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:       "acc-1",
		TenantID: "tenant-a",
		Name:     "merchant wallet",
		Type:     domain.AccountTypeAsset,
		Currency: "USD",
	}

	var captured usecase.CreateAccountInput
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Name:     "merchant wallet",
		Type:     "asset",
		Currency: "USD",
	})

	rec := httptest.NewRecorder()
	h.Create(rec, tenantRequest(http.MethodPost, "/accounts", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.TenantID != "tenant-a" || captured.Name != "merchant wallet" || captured.Type != domain.AccountTypeAsset {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, tenantRequest(http.MethodPost, "/accounts", []byte("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_UnknownType(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrUnknownAccountType
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateAccountRequest{Name: "x", Type: "mystery", Currency: "USD"})

	rec := httptest.NewRecorder()
	h.Create(rec, tenantRequest(http.MethodPost, "/accounts", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, tenantID, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, nil)

	req := withURLParam(tenantRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.ResponseCode != string(domain.ResponseNoAccount) {
		t.Fatalf("expected response code 14, got %q", resp.ResponseCode)
	}
}

func TestAccountHandler_GetBalance(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		balanceFn: func(ctx context.Context, tenantID, id string) (domain.Money, error) {
			if tenantID != "tenant-a" || id != "acc-1" {
				t.Fatalf("unexpected lookup %s/%s", tenantID, id)
			}
			return domain.NewMoney(2500, "EUR"), nil
		},
	}, nil)

	req := withURLParam(tenantRequest(http.MethodGet, "/accounts/acc-1/balance", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.GetBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Amount != 2500 || resp.Currency != "EUR" {
		t.Fatalf("unexpected balance %+v", resp)
	}
}

func TestAccountHandler_ListLines_ChecksOwnership(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, tenantID, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, &lineServiceStub{
		linesFn: func(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error) {
			t.Fatal("lines should not be listed when the account lookup fails")
			return nil, nil
		},
	})

	req := withURLParam(tenantRequest(http.MethodGet, "/accounts/acc-9/lines", nil), "id", "acc-9")
	rec := httptest.NewRecorder()
	h.ListLines(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_List_PassesPagination(t *testing.T) {
	var gotLimit, gotOffset int
	h := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.Account{}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.List(rec, tenantRequest(http.MethodGet, "/accounts?limit=5&offset=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 5 || gotOffset != 10 {
		t.Fatalf("expected pagination 5/10, got %d/%d", gotLimit, gotOffset)
	}
}
