package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/infrastructure/metrics"
)

// AccountService provisions chart-of-accounts entries and serves balance
// reads through a short-lived cache. Balances are only ever written by the
// posting engine.
type AccountService struct {
	accountRepo AccountRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
		logger:      logger,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	TenantID string
	Name     string
	Type     domain.AccountType
	Currency string
}

// CreateAccount creates an account with a zero opening balance.
func (uc *AccountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if _, err := domain.ParseAccountType(string(input.Type)); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		return nil, domain.ErrCurrencyMismatch
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		TenantID:  input.TenantID,
		Name:      strings.TrimSpace(input.Name),
		Type:      input.Type,
		Currency:  currency,
		Balance:   0,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		if err := uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     input.TenantID,
			Action:       string(domain.AuditActionAccountCreate),
			ResourceType: "account",
			ResourceID:   account.ID,
			RequestID:    RequestIDFromContext(ctx),
			AfterState:   domain.MarshalState(account),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}); err != nil {
			uc.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to write audit record")
		}
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account scoped to its tenant.
func (uc *AccountService) GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, tenantID, id)
}

// cachedBalance is the cache representation of a balance read.
type cachedBalance struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
	Version  int64  `json:"version"`
}

// GetBalance returns an account's balance, read through the cache. Cache
// failures degrade to a repository read, never to an error.
func (uc *AccountService) GetBalance(ctx context.Context, tenantID, id string) (domain.Money, error) {
	if uc.cache != nil {
		raw, err := uc.cache.Get(ctx, balanceCacheKey(id))
		if err != nil {
			if uc.metrics != nil {
				uc.metrics.RedisErrors.WithLabelValues("balance_get").Inc()
			}
			uc.logger.Warn().Err(err).Str("account_id", id).Msg("balance cache read failed")
		} else if raw != nil {
			var cached cachedBalance
			if json.Unmarshal(raw, &cached) == nil {
				return domain.NewMoney(cached.Balance, cached.Currency), nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Money{}, err
	}

	if uc.cache != nil {
		raw, err := json.Marshal(cachedBalance{Balance: account.Balance, Currency: account.Currency, Version: account.Version})
		if err == nil {
			if err := uc.cache.Set(ctx, balanceCacheKey(id), raw, BalanceCacheTTL); err != nil {
				if uc.metrics != nil {
					uc.metrics.RedisErrors.WithLabelValues("balance_set").Inc()
				}
				uc.logger.Warn().Err(err).Str("account_id", id).Msg("balance cache write failed")
			}
		}
	}

	return account.BalanceMoney(), nil
}

// ListAccounts lists a tenant's accounts with pagination.
func (uc *AccountService) ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	return uc.accountRepo.List(ctx, tenantID, limit, offset)
}
