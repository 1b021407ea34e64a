package dto

import (
	"time"

	"github.com/escrowpay/ledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	Balance   int64     `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		TenantID:  a.TenantID,
		Name:      a.Name,
		Type:      string(a.Type),
		Currency:  a.Currency,
		Balance:   a.Balance,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// BalanceResponse reports one account balance in minor units.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// BalanceFromMoney converts a balance read to a response.
func BalanceFromMoney(accountID string, m domain.Money) *BalanceResponse {
	return &BalanceResponse{AccountID: accountID, Amount: m.Amount, Currency: m.Currency}
}

// LedgerOperationResponse is the outcome of a posting operation.
type LedgerOperationResponse struct {
	BatchID string `json:"batch_id"`
}

// MessageResponse represents a financial message in API responses.
type MessageResponse struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	STAN           string    `json:"stan"`
	RRN            string    `json:"rrn"`
	ProcessingCode string    `json:"processing_code"`
	Phase          string    `json:"phase"`
	ResponseCode   string    `json:"response_code,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MessageFromDomain converts domain message to response.
func MessageFromDomain(m *domain.FinancialMessage) *MessageResponse {
	return &MessageResponse{
		ID:             m.ID,
		TenantID:       m.TenantID,
		STAN:           string(m.STAN),
		RRN:            string(m.RRN),
		ProcessingCode: string(m.ProcessingCode),
		Phase:          string(m.Phase),
		ResponseCode:   string(m.ResponseCode),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// BatchResponse represents a posting batch in API responses.
type BatchResponse struct {
	ID             string    `json:"id"`
	MessageID      string    `json:"message_id"`
	TenantID       string    `json:"tenant_id"`
	ProcessingCode string    `json:"processing_code"`
	TotalDebits    int64     `json:"total_debits"`
	TotalCredits   int64     `json:"total_credits"`
	EntryCount     int       `json:"entry_count"`
	PostedAt       time.Time `json:"posted_at"`
}

// BatchFromDomain converts domain batch to response.
func BatchFromDomain(b *domain.PostingBatch) *BatchResponse {
	return &BatchResponse{
		ID:             b.ID,
		MessageID:      b.MessageID,
		TenantID:       b.TenantID,
		ProcessingCode: string(b.ProcessingCode),
		TotalDebits:    b.TotalDebits,
		TotalCredits:   b.TotalCredits,
		EntryCount:     b.EntryCount,
		PostedAt:       b.PostedAt,
	}
}

// BatchesFromDomain converts domain batches to responses.
func BatchesFromDomain(batches []*domain.PostingBatch) []*BatchResponse {
	result := make([]*BatchResponse, len(batches))
	for i, b := range batches {
		result[i] = BatchFromDomain(b)
	}
	return result
}

// LineResponse represents a ledger line in API responses.
type LineResponse struct {
	ID          string         `json:"id"`
	BatchID     string         `json:"batch_id"`
	AccountID   string         `json:"account_id"`
	Amount      int64          `json:"amount"`
	Direction   string         `json:"direction"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// LineFromDomain converts domain ledger line to response.
func LineFromDomain(l *domain.LedgerLine) *LineResponse {
	return &LineResponse{
		ID:          l.ID,
		BatchID:     l.BatchID,
		AccountID:   l.AccountID,
		Amount:      l.Amount,
		Direction:   string(l.Direction),
		Description: l.Description,
		Metadata:    l.Metadata,
		CreatedAt:   l.CreatedAt,
	}
}

// LinesFromDomain converts domain ledger lines to responses.
func LinesFromDomain(lines []*domain.LedgerLine) []*LineResponse {
	result := make([]*LineResponse, len(lines))
	for i, l := range lines {
		result[i] = LineFromDomain(l)
	}
	return result
}

// TrialBalanceResponse is the per-currency trial balance report.
type TrialBalanceResponse struct {
	Rows     []TrialBalanceRowResponse `json:"rows"`
	Balanced bool                      `json:"balanced"`
}

// TrialBalanceRowResponse is one currency's totals.
type TrialBalanceRowResponse struct {
	Currency     string `json:"currency"`
	TotalDebits  int64  `json:"total_debits"`
	TotalCredits int64  `json:"total_credits"`
	NetBalance   int64  `json:"net_balance"`
	LineCount    int64  `json:"line_count"`
	Balanced     bool   `json:"balanced"`
}

// TrialBalanceFromDomain converts trial balance rows to a response.
func TrialBalanceFromDomain(rows []domain.TrialBalanceRow) *TrialBalanceResponse {
	resp := &TrialBalanceResponse{
		Rows:     make([]TrialBalanceRowResponse, len(rows)),
		Balanced: true,
	}

	for i, r := range rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			Currency:     r.Currency,
			TotalDebits:  r.TotalDebits,
			TotalCredits: r.TotalCredits,
			NetBalance:   r.NetBalance,
			LineCount:    r.LineCount,
			Balanced:     r.Balanced(),
		}
		if !r.Balanced() {
			resp.Balanced = false
		}
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message,omitempty"`
	ResponseCode string `json:"response_code,omitempty"`
}
