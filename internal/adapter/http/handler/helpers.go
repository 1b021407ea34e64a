package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps a domain error to an HTTP status and writes it,
// carrying the two-digit response code alongside the message.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapDomainError(err)
	code := responseCodeFor(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:        http.StatusText(status),
		Message:      err.Error(),
		ResponseCode: string(code),
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNegativeBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrDoubleEntryImbalance),
		errors.Is(err, domain.ErrEmptyEntries),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrUnknownAccountType),
		errors.Is(err, domain.ErrNoLedgerEntry),
		errors.Is(err, domain.ErrInvalidIdentifierFormat),
		errors.Is(err, usecase.ErrIdempotencyKeyRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// responseCodeFor mirrors the posting engine's outcome classification for
// transport-level error payloads.
func responseCodeFor(err error) domain.ResponseCode {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNegativeBalance):
		return domain.ResponseInsufficientFunds
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.ResponseNoAccount
	case errors.Is(err, domain.ErrInvalidAmount):
		return domain.ResponseInvalidAmount
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return domain.ResponseDuplicate
	case errors.Is(err, domain.ErrDoubleEntryImbalance),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrEmptyEntries),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrNoLedgerEntry):
		return domain.ResponseInvalidTransaction
	case errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrBatchNotFound):
		return domain.ResponseInvalidTransaction
	default:
		return domain.ResponseSystemMalfunction
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
