package domain

import "time"

// Event types
const (
	EventTypeBatchPosted     = "batch.posted"
	EventTypeMessageFailed   = "message.failed"
	EventTypeMessageReversed = "message.reversed"
)

// Aggregate types
const (
	AggregateTypeBatch   = "posting_batch"
	AggregateTypeMessage = "financial_message"
)

// OutboxEvent is written in the same transaction as the state change it
// describes, then handed off by the publisher loop. Delivery to external
// systems is someone else's problem.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BatchPostedEvent payload
type BatchPostedEvent struct {
	BatchID        string `json:"batch_id"`
	MessageID      string `json:"message_id"`
	TenantID       string `json:"tenant_id"`
	ProcessingCode string `json:"processing_code"`
	TotalDebits    int64  `json:"total_debits"`
	TotalCredits   int64  `json:"total_credits"`
	EntryCount     int    `json:"entry_count"`
}

// MessageFailedEvent payload
type MessageFailedEvent struct {
	MessageID    string `json:"message_id"`
	TenantID     string `json:"tenant_id"`
	ResponseCode string `json:"response_code"`
	Reason       string `json:"reason"`
}
