package domain

import (
	"fmt"
	"time"
)

// Phase is a financial message's lifecycle state.
type Phase string

const (
	PhaseInitiated Phase = "INITIATED"
	PhaseValidated Phase = "VALIDATED"
	PhaseLocked    Phase = "LOCKED"
	PhasePosted    Phase = "POSTED"
	PhaseCompleted Phase = "COMPLETED"
	PhaseFailed    Phase = "FAILED"
	PhaseReversed  Phase = "REVERSED"
)

// phaseTransitions enumerates every legal transition. Anything not listed
// is rejected. FAILED is reachable from every non-terminal phase; REVERSED
// only from POSTED or COMPLETED; COMPLETED -> REVERSED is the sole
// transition out of a terminal phase.
var phaseTransitions = map[Phase][]Phase{
	PhaseInitiated: {PhaseValidated, PhaseFailed},
	PhaseValidated: {PhaseLocked, PhaseFailed},
	PhaseLocked:    {PhasePosted, PhaseFailed},
	PhasePosted:    {PhaseCompleted, PhaseReversed, PhaseFailed},
	PhaseCompleted: {PhaseReversed},
	PhaseFailed:    {},
	PhaseReversed:  {},
}

// CanTransitionTo reports whether moving from p to next is legal.
func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range phaseTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed, except
// that COMPLETED still admits REVERSED.
func (p Phase) IsTerminal() bool {
	return p == PhaseFailed || p == PhaseReversed || p == PhaseCompleted
}

// FinancialMessage is one logical transaction request. It is created on
// intake, transitioned through phases, and never deleted.
type FinancialMessage struct {
	ID             string
	TenantID       string
	STAN           STAN
	RRN            RRN
	ProcessingCode ProcessingCode
	Phase          Phase
	ResponseCode   ResponseCode
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransitionTo advances the message to next, enforcing the transition
// table. The caller persists the change.
func (m *FinancialMessage) TransitionTo(next Phase) error {
	if !m.Phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s (message %s)", ErrIllegalTransition, m.Phase, next, m.ID)
	}

	m.Phase = next

	return nil
}
