package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance, version int64, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)

	// LockOrder records the id slices passed to GetByIDsForUpdate.
	LockOrder [][]string
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

// Seed installs an account into the backing map.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok && acc.TenantID == tenantID {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string) ([]*domain.Account, error) {
	m.mu.Lock()
	m.LockOrder = append(m.LockOrder, append([]string(nil), ids...))
	m.mu.Unlock()

	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, tenantID, ids)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	// Row snapshots, as a database read would return. Callers only
	// change the backing store through UpdateBalance.
	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok && acc.TenantID == tenantID {
			snapshot := *acc
			accounts = append(accounts, &snapshot)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance, version int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, version, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version = version
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.TenantID == tenantID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

// MockBatchRepository is a mock implementation of BatchRepository.
type MockBatchRepository struct {
	mu      sync.RWMutex
	batches map[string]*domain.PostingBatch

	CreateFunc func(ctx context.Context, tx usecase.Transaction, batch *domain.PostingBatch) error
}

func NewMockBatchRepository() *MockBatchRepository {
	return &MockBatchRepository{batches: make(map[string]*domain.PostingBatch)}
}

func (m *MockBatchRepository) Create(ctx context.Context, tx usecase.Transaction, batch *domain.PostingBatch) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, batch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.ID] = batch
	return nil
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id string) (*domain.PostingBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.batches[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBatchNotFound
}

func (m *MockBatchRepository) ListByMessage(ctx context.Context, messageID string) ([]*domain.PostingBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var batches []*domain.PostingBatch
	for _, b := range m.batches {
		if b.MessageID == messageID {
			batches = append(batches, b)
		}
	}
	return batches, nil
}

// Count returns the number of stored batches.
func (m *MockBatchRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches)
}

// MockLineRepository is a mock implementation of LineRepository.
type MockLineRepository struct {
	mu    sync.RWMutex
	lines []*domain.LedgerLine

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, line *domain.LedgerLine) error
	GetByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error)
}

func NewMockLineRepository() *MockLineRepository {
	return &MockLineRepository{}
}

func (m *MockLineRepository) Create(ctx context.Context, tx usecase.Transaction, line *domain.LedgerLine) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, line)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

func (m *MockLineRepository) GetByBatch(ctx context.Context, batchID string) ([]*domain.LedgerLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var lines []*domain.LedgerLine
	for _, l := range m.lines {
		if l.BatchID == batchID {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

func (m *MockLineRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerLine, error) {
	if m.GetByAccountFunc != nil {
		return m.GetByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var lines []*domain.LedgerLine
	for _, l := range m.lines {
		if l.AccountID == accountID {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// All returns every stored line.
func (m *MockLineRepository) All() []*domain.LedgerLine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.LedgerLine(nil), m.lines...)
}

// MockMessageRepository is a mock implementation of MessageRepository.
type MockMessageRepository struct {
	mu       sync.RWMutex
	messages map[string]*domain.FinancialMessage

	CreateFunc        func(ctx context.Context, message *domain.FinancialMessage) error
	UpdatePhaseFunc   func(ctx context.Context, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error
	UpdatePhaseTxFunc func(ctx context.Context, tx usecase.Transaction, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{messages: make(map[string]*domain.FinancialMessage)}
}

// Seed installs a message into the backing map.
func (m *MockMessageRepository) Seed(msg *domain.FinancialMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ID] = msg
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.FinancialMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*domain.FinancialMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if msg, ok := m.messages[id]; ok {
		copied := *msg
		return &copied, nil
	}
	return nil, domain.ErrMessageNotFound
}

func (m *MockMessageRepository) UpdatePhase(ctx context.Context, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error {
	if m.UpdatePhaseFunc != nil {
		return m.UpdatePhaseFunc(ctx, id, phase, responseCode, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		msg.Phase = phase
		msg.ResponseCode = responseCode
		msg.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockMessageRepository) UpdatePhaseTx(ctx context.Context, tx usecase.Transaction, id string, phase domain.Phase, responseCode domain.ResponseCode, updatedAt time.Time) error {
	if m.UpdatePhaseTxFunc != nil {
		return m.UpdatePhaseTxFunc(ctx, tx, id, phase, responseCode, updatedAt)
	}
	return m.UpdatePhase(ctx, id, phase, responseCode, updatedAt)
}

// PhaseByCode returns the phase of the first stored message with the
// given processing code.
func (m *MockMessageRepository) PhaseByCode(code domain.ProcessingCode) (domain.Phase, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.messages {
		if msg.ProcessingCode == code {
			return msg.Phase, true
		}
	}
	return "", false
}

// Phase returns a stored message's current phase.
func (m *MockMessageRepository) Phase(id string) domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if msg, ok := m.messages[id]; ok {
		return msg.Phase
	}
	return ""
}

// MockIdempotencyRepository is a mock implementation of
// IdempotencyRepository.
type MockIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord

	GetFunc      func(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error)
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{records: make(map[string]*domain.IdempotencyRecord)}
}

func recordKey(tenantID, key string) string {
	return tenantID + ":" + key
}

// Seed installs a record into the backing map.
func (m *MockIdempotencyRepository) Seed(record *domain.IdempotencyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey(record.TenantID, record.Key)] = record
}

func (m *MockIdempotencyRepository) Get(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[recordKey(tenantID, key)], nil
}

func (m *MockIdempotencyRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[recordKey(record.TenantID, record.Key)]; ok && !existing.Expired(record.CreatedAt) {
		return domain.ErrDuplicateIdempotencyKey
	}
	m.records[recordKey(record.TenantID, record.Key)] = record
	return nil
}

func (m *MockIdempotencyRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, rec := range m.records {
		if rec.ExpiresAt.Before(before) {
			delete(m.records, key)
			n++
		}
	}
	return n, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) CreateStandalone(ctx context.Context, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns every stored event.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...), nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	TrialBalanceFunc func(ctx context.Context) ([]domain.TrialBalanceRow, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) TrialBalance(ctx context.Context) ([]domain.TrialBalanceRow, error) {
	if m.TrialBalanceFunc != nil {
		return m.TrialBalanceFunc(ctx)
	}
	return nil, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu  sync.Mutex
	Txs []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.mu.Lock()
	m.Txs = append(m.Txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu   sync.Mutex
	next int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("id-%04d", m.next)
}

// MockSequenceProvider is a mock implementation of SequenceProvider.
type MockSequenceProvider struct {
	NextFunc func(ctx context.Context, key string, expiry time.Duration) (int64, error)

	mu       sync.Mutex
	counters map[string]int64
}

func NewMockSequenceProvider() *MockSequenceProvider {
	return &MockSequenceProvider{counters: make(map[string]int64)}
}

func (m *MockSequenceProvider) Next(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, key, expiry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu      sync.RWMutex
	values  map[string][]byte
	Deletes []string

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	m.Deletes = append(m.Deletes, key)
	return nil
}
