package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/store"
)

var _ store.QuestionStore = (*MockQuestionStore)(nil)

// MockQuestionStore implements store.QuestionStore for testing
type MockQuestionStore struct {
	GetQuestionFn func(ctx context.Context, questionID string) (*domain.Question, error)
	GetStackFn    func(ctx context.Context, stackID string) (*domain.Stack, error)

	// Questions is served by GetQuestion when GetQuestionFn is nil.
	Questions map[string]*domain.Question
	Err       error

	mu               sync.Mutex
	getQuestionCalls []string
}

// GetQuestion implements the store.QuestionStore interface
func (m *MockQuestionStore) GetQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	m.mu.Lock()
	m.getQuestionCalls = append(m.getQuestionCalls, questionID)
	m.mu.Unlock()

	if m.GetQuestionFn != nil {
		return m.GetQuestionFn(ctx, questionID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	q, ok := m.Questions[questionID]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	c := *q
	return &c, nil
}

// GetStack implements the store.QuestionStore interface
func (m *MockQuestionStore) GetStack(ctx context.Context, stackID string) (*domain.Stack, error) {
	if m.GetStackFn != nil {
		return m.GetStackFn(ctx, stackID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	stack := &domain.Stack{ID: stackID}
	for _, q := range m.Questions {
		if q.StackID == stackID {
			stack.Questions = append(stack.Questions, *q)
		}
	}
	if len(stack.Questions) == 0 {
		return nil, store.ErrStackNotFound
	}
	return stack, nil
}

// GetQuestionCalls returns the question IDs requested so far.
func (m *MockQuestionStore) GetQuestionCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.getQuestionCalls...)
}
