package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// AccountService is the account surface the handler needs.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetBalance(ctx context.Context, tenantID, id string) (domain.Money, error)
	ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
}

// AccountLineService serves per-account statements.
type AccountLineService interface {
	ListAccountLines(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error)
}

// AccountHandler handles account endpoints.
type AccountHandler struct {
	accounts AccountService
	lines    AccountLineService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts AccountService, lines AccountLineService) *AccountHandler {
	return &AccountHandler{accounts: accounts, lines: lines}
}

// Create handles POST /accounts.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), usecase.CreateAccountInput{
		TenantID: middleware.TenantID(r.Context()),
		Name:     req.Name,
		Type:     domain.AccountType(req.Type),
		Currency: req.Currency,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get handles GET /accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	account, err := h.accounts.GetAccount(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List handles GET /accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accounts.ListAccounts(r.Context(), middleware.TenantID(r.Context()), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// GetBalance handles GET /accounts/{id}/balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	balance, err := h.accounts.GetBalance(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromMoney(id, balance))
}

// ListLines handles GET /accounts/{id}/lines: the account statement.
func (h *AccountHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Resolve through the tenant-scoped account first so one tenant can
	// never read another tenant's statement.
	if _, err := h.accounts.GetAccount(r.Context(), middleware.TenantID(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	lines, err := h.lines.ListAccountLines(r.Context(), id, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LinesFromDomain(lines))
}
