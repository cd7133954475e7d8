package domain

import (
	"fmt"
	"strings"
)

// Stack is a named collection of questions grouped for study and progress tracking.
type Stack struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Question is owned by a stack and is read-only at submission time.
type Question struct {
	ID      string    `json:"id"`
	StackID string    `json:"stack_id"`
	Prompt  string    `json:"prompt,omitempty"`
	Answers []string  `json:"answers"`
	Rule    MatchRule `json:"rule"`
}

// Validate checks if the Question has valid data.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if strings.TrimSpace(q.StackID) == "" {
		return NewValidationError("stack_id", "is required", ErrInvalidID)
	}
	if len(q.Answers) == 0 {
		return fmt.Errorf("question %s: %w", q.ID, ErrEmptyAnswers)
	}
	for i, a := range q.Answers {
		if a == "" {
			return NewValidationError(fmt.Sprintf("answers[%d]", i), "cannot be empty", nil)
		}
	}
	if err := q.Rule.Validate(); err != nil {
		return fmt.Errorf("question %s: %w", q.ID, err)
	}
	return nil
}

// Validate checks the stack and every question it owns. Question IDs must be
// unique within the stack and every question must point back at it.
func (s *Stack) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	seen := make(map[string]struct{}, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		if q.StackID != s.ID {
			return NewValidationError("stack_id",
				fmt.Sprintf("of question %s does not match stack %s", q.ID, s.ID), nil)
		}
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := seen[q.ID]; dup {
			return NewValidationError("id", fmt.Sprintf("duplicate question %s", q.ID), nil)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
