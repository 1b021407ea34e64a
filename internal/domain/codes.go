package domain

// ProcessingCode labels the business meaning of a posting.
type ProcessingCode string

const (
	ProcessingCodeDeposit       ProcessingCode = "DEPOSIT"
	ProcessingCodeWithdrawal    ProcessingCode = "WITHDRAWAL"
	ProcessingCodeEscrowLock    ProcessingCode = "ESCROW_LOCK"
	ProcessingCodeEscrowRelease ProcessingCode = "ESCROW_RELEASE"
	ProcessingCodeEscrowRefund  ProcessingCode = "ESCROW_REFUND"
	ProcessingCodeFee           ProcessingCode = "FEE"
	ProcessingCodeAdjustment    ProcessingCode = "ADJUSTMENT"
	ProcessingCodeInquiry       ProcessingCode = "BALANCE_INQUIRY"
)

// RequiresLedgerEntry reports whether postings with this code move money.
// Non-financial inquiries never touch the ledger.
func (c ProcessingCode) RequiresLedgerEntry() bool {
	return c != ProcessingCodeInquiry
}

// Valid reports whether the code is one of the known processing codes.
func (c ProcessingCode) Valid() bool {
	switch c {
	case ProcessingCodeDeposit, ProcessingCodeWithdrawal,
		ProcessingCodeEscrowLock, ProcessingCodeEscrowRelease, ProcessingCodeEscrowRefund,
		ProcessingCodeFee, ProcessingCodeAdjustment, ProcessingCodeInquiry:
		return true
	}
	return false
}

// ResponseCode classifies a posting outcome, following the two-digit
// card-network convention. Callers use IsRetryable to decide whether the
// same request (same idempotency key) may be resubmitted.
type ResponseCode string

const (
	ResponseApproved           ResponseCode = "00"
	ResponseDoNotHonor         ResponseCode = "05"
	ResponseInvalidTransaction ResponseCode = "12"
	ResponseInvalidAmount      ResponseCode = "13"
	ResponseNoAccount          ResponseCode = "14"
	ResponseDuplicate          ResponseCode = "94"
	ResponseInsufficientFunds  ResponseCode = "51"
	ResponseTimeout            ResponseCode = "68"
	ResponseIssuerInoperative  ResponseCode = "91"
	ResponseSystemMalfunction  ResponseCode = "96"
)

// IsSuccess reports whether the code is the single success code.
func (c ResponseCode) IsSuccess() bool {
	return c == ResponseApproved
}

// IsRetryable reports whether a failure with this code may be retried.
// Only infrastructure failures are retryable; business declines are final.
func (c ResponseCode) IsRetryable() bool {
	switch c {
	case ResponseTimeout, ResponseIssuerInoperative, ResponseSystemMalfunction:
		return true
	}
	return false
}

// Description returns a short human-readable reason for the code.
func (c ResponseCode) Description() string {
	switch c {
	case ResponseApproved:
		return "approved"
	case ResponseDoNotHonor:
		return "do not honor"
	case ResponseInvalidTransaction:
		return "invalid transaction"
	case ResponseInvalidAmount:
		return "invalid amount"
	case ResponseNoAccount:
		return "no such account"
	case ResponseDuplicate:
		return "duplicate transaction"
	case ResponseInsufficientFunds:
		return "insufficient funds"
	case ResponseTimeout:
		return "timeout"
	case ResponseIssuerInoperative:
		return "system inoperative"
	case ResponseSystemMalfunction:
		return "system malfunction"
	default:
		return "unknown"
	}
}
