package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ProgressRecord is the ring of correct/total submission counts for one
// (user, stack) pair. Absence of a record is equivalent to the zero record.
// Both counters only ever grow and Correct never exceeds Total.
type ProgressRecord struct {
	UserID  uuid.UUID `json:"user_id"`
	StackID string    `json:"stack_id"`
	Correct int64     `json:"correct"`
	Total   int64     `json:"total"`
}

// NewProgressRecord returns the zero record for a key.
func NewProgressRecord(userID uuid.UUID, stackID string) ProgressRecord {
	return ProgressRecord{UserID: userID, StackID: stackID}
}

// WithOutcome returns the record after one submission: total always grows by
// one, correct grows by one iff the submission was judged correct.
func (p ProgressRecord) WithOutcome(correct bool) ProgressRecord {
	p.Total++
	if correct {
		p.Correct++
	}
	return p
}

// Validate checks the counter invariants.
func (p ProgressRecord) Validate() error {
	if p.Correct < 0 || p.Total < 0 {
		return fmt.Errorf("%w: negative counter (correct=%d, total=%d)", ErrInvalidProgress, p.Correct, p.Total)
	}
	if p.Correct > p.Total {
		return fmt.Errorf("%w: correct %d exceeds total %d", ErrInvalidProgress, p.Correct, p.Total)
	}
	return nil
}

// Ring is the client-facing view of a progress record.
type Ring struct {
	Correct int64 `json:"correct"`
	Total   int64 `json:"total"`
}

// Ring returns the counters of the record.
func (p ProgressRecord) Ring() Ring {
	return Ring{Correct: p.Correct, Total: p.Total}
}
