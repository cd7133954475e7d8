package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/store"
)

// QuestionStore serves stacks held in memory, typically loaded from a stack
// file at startup. It also accepts imports so tests can seed it.
type QuestionStore struct {
	mu        sync.RWMutex
	stacks    map[string]*domain.Stack
	questions map[string]*domain.Question
}

var (
	_ store.QuestionStore = (*QuestionStore)(nil)
	_ store.StackWriter   = (*QuestionStore)(nil)
)

// NewQuestionStore creates a store holding the given stacks.
// It fails if any stack is invalid or a question ID appears twice.
func NewQuestionStore(stacks ...*domain.Stack) (*QuestionStore, error) {
	s := &QuestionStore{
		stacks:    make(map[string]*domain.Stack),
		questions: make(map[string]*domain.Question),
	}
	for _, stack := range stacks {
		if err := s.SaveStack(context.Background(), stack); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// GetQuestion implements store.QuestionStore.
func (s *QuestionStore) GetQuestion(_ context.Context, questionID string) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[questionID]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

// GetStack implements store.QuestionStore.
func (s *QuestionStore) GetStack(_ context.Context, stackID string) (*domain.Stack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stack, ok := s.stacks[stackID]
	if !ok {
		return nil, store.ErrStackNotFound
	}

	out := &domain.Stack{ID: stack.ID, Title: stack.Title, Questions: make([]domain.Question, 0, len(stack.Questions))}
	for i := range stack.Questions {
		out.Questions = append(out.Questions, *cloneQuestion(&stack.Questions[i]))
	}
	return out, nil
}

// SaveStack implements store.StackWriter. Replacing a stack drops questions
// that are no longer part of it.
func (s *QuestionStore) SaveStack(_ context.Context, stack *domain.Stack) error {
	if stack == nil {
		return fmt.Errorf("%w: nil stack", store.ErrInvalidEntity)
	}
	if err := stack.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range stack.Questions {
		if existing, ok := s.questions[stack.Questions[i].ID]; ok && existing.StackID != stack.ID {
			return fmt.Errorf("%w: question %q already belongs to stack %q",
				store.ErrDuplicate, existing.ID, existing.StackID)
		}
	}

	if old, ok := s.stacks[stack.ID]; ok {
		for _, q := range old.Questions {
			delete(s.questions, q.ID)
		}
	}

	saved := &domain.Stack{ID: stack.ID, Title: stack.Title, Questions: make([]domain.Question, len(stack.Questions))}
	for i := range stack.Questions {
		saved.Questions[i] = *cloneQuestion(&stack.Questions[i])
		s.questions[saved.Questions[i].ID] = &saved.Questions[i]
	}
	s.stacks[stack.ID] = saved
	return nil
}

func cloneQuestion(q *domain.Question) *domain.Question {
	c := *q
	c.Answers = append([]string(nil), q.Answers...)
	if q.Rule.CaseSensitive != nil {
		c.Rule.CaseSensitive = domain.Bool(*q.Rule.CaseSensitive)
	}
	if q.Rule.NormalizeWhitespace != nil {
		c.Rule.NormalizeWhitespace = domain.Bool(*q.Rule.NormalizeWhitespace)
	}
	return &c
}
