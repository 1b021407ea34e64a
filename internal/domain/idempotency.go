package domain

import "time"

// IdempotencyRecord caches the outcome of the first successful posting
// made with a given key. It is written in the same transaction as the
// posting itself; the unique index on the key is the serializing
// constraint that makes retries at-most-once.
type IdempotencyRecord struct {
	Key          string
	TenantID     string
	BatchID      string
	ResponseCode ResponseCode
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the record has passed its TTL window.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
