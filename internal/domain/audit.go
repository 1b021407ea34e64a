package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an immutable audit trail entry recorded for every
// balance-affecting operation and message transition.
type AuditLog struct {
	ID           string
	TenantID     string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionBatchPost       AuditAction = "batch.post"
	AuditActionMessageCreate   AuditAction = "message.create"
	AuditActionMessageFail     AuditAction = "message.fail"
	AuditActionMessageComplete AuditAction = "message.complete"
	AuditActionMessageReverse  AuditAction = "message.reverse"
	AuditActionAccountCreate   AuditAction = "account.create"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	TenantID     string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
