package domain

import (
	"time"
)

// Direction marks a ledger line as a debit or a credit.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// ParseDirection validates a raw direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionDebit, DirectionCredit:
		return Direction(s), nil
	default:
		return "", ErrInvalidDirection
	}
}

// PostingBatch is the atomic unit of ledger writes produced by one
// successful posting call. Created exactly once, immutable thereafter.
type PostingBatch struct {
	ID             string
	MessageID      string
	TenantID       string
	ProcessingCode ProcessingCode
	TotalDebits    int64
	TotalCredits   int64
	EntryCount     int
	PostedAt       time.Time
}

// LedgerLine is one account movement within a batch. Lines are never
// updated or deleted; corrections are new offsetting batches.
type LedgerLine struct {
	ID          string
	BatchID     string
	AccountID   string
	Amount      int64 // minor units, always non-negative
	Direction   Direction
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// EntryInput is a caller-supplied movement request, before validation.
type EntryInput struct {
	AccountID   string
	Direction   Direction
	Amount      int64
	Description string
	Metadata    map[string]any
}

// ValidateEntries rejects empty entry sets, non-positive amounts and
// unknown directions, and checks that debits and credits balance. It runs
// before any lock is taken.
func ValidateEntries(entries []EntryInput) error {
	if len(entries) == 0 {
		return ErrEmptyEntries
	}

	var debits, credits int64
	for _, e := range entries {
		if e.Amount <= 0 {
			return ErrInvalidAmount
		}

		switch e.Direction {
		case DirectionDebit:
			debits += e.Amount
		case DirectionCredit:
			credits += e.Amount
		default:
			return ErrInvalidDirection
		}
	}

	if debits != credits {
		return ErrDoubleEntryImbalance
	}

	return nil
}

// EntryTotals sums debit and credit amounts for a validated entry set.
func EntryTotals(entries []EntryInput) (debits, credits int64) {
	for _, e := range entries {
		if e.Direction == DirectionDebit {
			debits += e.Amount
		} else {
			credits += e.Amount
		}
	}
	return debits, credits
}
