// Package answer implements answer submission: it judges free-text input
// against a question's match rule and records the outcome on the learner's
// ring for the question's stack.
package answer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-rings/internal/domain"
)

// Submission is one learner answer. It is never persisted.
type Submission struct {
	UserID     uuid.UUID
	StackID    string // optional; when set it must own the question
	QuestionID string
	Input      string
	// SubmittedAt defaults to the service clock when zero.
	SubmittedAt time.Time
}

// Result is the outcome of a submission.
type Result struct {
	Correct    bool
	QuestionID string
	StackID    string
	// Ring is the committed ring immediately after this submission.
	Ring domain.Ring
}

// Evaluator judges input against a rule. *match.Evaluator implements it.
type Evaluator interface {
	Evaluate(input string, validAnswers []string, rule domain.MatchRule) (bool, error)
}

// Service processes answer submissions.
type Service interface {
	// Submit validates, judges and records one submission.
	//
	// Returns:
	//   - a ValidationError (errors.Is domain.ErrValidation) for empty input or
	//     a missing question id
	//   - store.ErrStackNotFound when a stack is named and does not exist
	//   - store.ErrQuestionNotFound when the question does not exist or is not
	//     part of the named stack
	//   - an error matching match.ErrInvalidRule when the question's rule is
	//     unusable; the ring is not touched in that case
	//   - the context error (wrapped in service.ErrTimeout for the
	//     submission's own deadline) when ctx ends before the store confirms
	//     the outcome; with a remote store the outcome may still have been
	//     applied, so it is unconfirmed rather than rolled back
	//   - a ServiceError wrapping store.ErrStorage for backend faults
	//
	// A nil error means exactly one outcome was committed.
	Submit(ctx context.Context, sub Submission) (*Result, error)
}
