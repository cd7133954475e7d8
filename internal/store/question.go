package store

import (
	"context"

	"github.com/phrazzld/scry-rings/internal/domain"
)

// QuestionStore defines read access to authored stacks and questions.
// Question IDs are unique across all stacks.
type QuestionStore interface {
	// GetQuestion retrieves a question with its answers and match rule.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetQuestion(ctx context.Context, questionID string) (*domain.Question, error)

	// GetStack retrieves a stack and its questions in authored order.
	// Returns ErrStackNotFound if the stack does not exist.
	GetStack(ctx context.Context, stackID string) (*domain.Stack, error)
}

// StackWriter is implemented by question stores that accept imported stacks.
type StackWriter interface {
	// SaveStack creates or replaces a stack and its full question set.
	// Returns ErrInvalidEntity wrapping the validation failure if the stack is invalid.
	SaveStack(ctx context.Context, stack *domain.Stack) error
}
