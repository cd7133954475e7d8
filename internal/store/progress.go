package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-rings/internal/domain"
)

// ProgressStore defines the interface for the keyed (user, stack) counter store.
// Version: 1.0
type ProgressStore interface {
	// Get returns the current record for the key. A key that has never
	// received an outcome yields the zero record; absence is never an error.
	Get(ctx context.Context, userID uuid.UUID, stackID string) (*domain.ProgressRecord, error)

	// ApplyOutcome increments total by one and, when correct is true, correct
	// by one, as a single atomic unit with respect to every other ApplyOutcome
	// on the same key. Concurrent outcomes are never lost, whatever their
	// interleaving. Records for different keys are independent.
	//
	// The returned record reflects the committed state immediately after this
	// update. A nil error means the backend acknowledged the commit. If ctx is
	// already done when ApplyOutcome is called, nothing is sent and ctx.Err()
	// is returned. If ctx ends while the call is in flight, ctx.Err() is
	// returned and the outcome is unconfirmed: a remote backend may already
	// have applied it. Backend faults are reported wrapped in ErrStorage.
	ApplyOutcome(ctx context.Context, userID uuid.UUID, stackID string, correct bool) (*domain.ProgressRecord, error)
}
