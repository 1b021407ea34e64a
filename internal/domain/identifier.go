package domain

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"
)

// RRN is a Retrieval Reference Number: a global transaction trace id in
// the card-payment convention. It is a best-effort, high-entropy
// identifier (timestamp plus randomness), not a primary key: collisions
// are improbable, not impossible.
type RRN string

// STAN is a System Trace Audit Number, unique per tenant per calendar day:
// a YYMMDD date prefix followed by a six-digit zero-padded sequence drawn
// from an atomic per-tenant-per-day counter.
type STAN string

var (
	rrnPattern  = regexp.MustCompile(`^[A-Z0-9]{12,24}$`)
	stanPattern = regexp.MustCompile(`^[0-9]{6,12}$`)
)

const rrnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRRN builds a new RRN from the current UTC timestamp
// (yyMMddHHmmss) and a six-character random suffix.
func GenerateRRN(now time.Time) RRN {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// the timestamp nanoseconds so generation stays total.
		nanos := now.UnixNano()
		for i := range suffix {
			suffix[i] = byte(nanos >> (8 * i))
		}
	}

	for i, b := range suffix {
		suffix[i] = rrnAlphabet[int(b)%len(rrnAlphabet)]
	}

	return RRN(now.UTC().Format("060102150405") + string(suffix))
}

// ParseRRN validates an existing string against the RRN format.
func ParseRRN(s string) (RRN, error) {
	if !rrnPattern.MatchString(s) {
		return "", fmt.Errorf("%w: rrn %q", ErrInvalidIdentifierFormat, s)
	}
	return RRN(s), nil
}

func (r RRN) String() string { return string(r) }

// maxStanSequence is the largest counter value the six sequence digits
// can carry alongside the date prefix.
const maxStanSequence = 999999

// NewSTAN builds a STAN from a business date and a sequence number already
// drawn from the per-tenant-per-day counter. A counter past the six-digit
// range is an error: wrapping would mint a duplicate that the per-tenant
// uniqueness index then rejects on a later, unrelated intake.
func NewSTAN(date time.Time, sequence int64) (STAN, error) {
	if sequence < 0 || sequence > maxStanSequence {
		return "", fmt.Errorf("%w: stan sequence %d out of range", ErrSequenceExhausted, sequence)
	}

	return STAN(fmt.Sprintf("%s%06d", date.UTC().Format("060102"), sequence)), nil
}

// ParseSTAN validates an existing string against the STAN format.
func ParseSTAN(s string) (STAN, error) {
	if !stanPattern.MatchString(s) {
		return "", fmt.Errorf("%w: stan %q", ErrInvalidIdentifierFormat, s)
	}
	return STAN(s), nil
}

func (s STAN) String() string { return string(s) }
