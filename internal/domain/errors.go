package domain

import "errors"

var (
	// Validation errors, rejected before any lock is taken.
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrCurrencyMismatch        = errors.New("currency mismatch")
	ErrInvalidIdentifierFormat = errors.New("invalid identifier format")

	// Business-rule errors, abort the whole unit of work.
	ErrDoubleEntryImbalance = errors.New("double-entry imbalance: debits do not equal credits")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrIllegalTransition    = errors.New("illegal message phase transition")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrSameAccount        = errors.New("cannot post between the same account")
	ErrNegativeBalance    = errors.New("asset account balance cannot go negative")
	ErrUnknownAccountType = errors.New("unknown account type")

	// Posting errors
	ErrEmptyEntries     = errors.New("posting requires at least one entry")
	ErrBatchNotFound    = errors.New("posting batch not found")
	ErrMessageNotFound  = errors.New("financial message not found")
	ErrInvalidDirection = errors.New("entry direction must be debit or credit")
	ErrNoLedgerEntry    = errors.New("processing code does not produce ledger entries")

	// Idempotency errors
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already reserved")

	// Identifier errors
	ErrSequenceExhausted = errors.New("stan sequence exhausted for the day")
)
