package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/domain/match"
)

// ErrInvalidFile is returned when a stack file cannot be decoded or fails validation.
var ErrInvalidFile = errors.New("invalid stack file")

type stackFile struct {
	Stacks []stackDoc `yaml:"stacks" validate:"required,min=1,dive"`
}

type stackDoc struct {
	ID        string        `yaml:"id"        validate:"required"`
	Title     string        `yaml:"title"`
	Questions []questionDoc `yaml:"questions" validate:"required,min=1,dive"`
}

type questionDoc struct {
	ID      string           `yaml:"id"      validate:"required"`
	Prompt  string           `yaml:"prompt"`
	Answers []string         `yaml:"answers" validate:"required,min=1,dive,required"`
	Rule    domain.MatchRule `yaml:"rule"`
}

var validate = validator.New()

// LoadFile reads and validates the stack file at path.
func LoadFile(path string) ([]*domain.Stack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stack file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stacks, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stacks, nil
}

// Parse decodes and validates a stack file. Unknown keys are rejected so a
// misspelt rule flag cannot silently fall back to its default. Question IDs
// must be unique across the whole file.
func Parse(r io.Reader) ([]*domain.Stack, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stack file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file stackFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrInvalidFile)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	stacks := make([]*domain.Stack, 0, len(file.Stacks))
	stackIDs := make(map[string]struct{}, len(file.Stacks))
	questionIDs := make(map[string]string)

	for _, doc := range file.Stacks {
		if _, dup := stackIDs[doc.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate stack %q", ErrInvalidFile, doc.ID)
		}
		stackIDs[doc.ID] = struct{}{}

		stack := &domain.Stack{ID: doc.ID, Title: doc.Title, Questions: make([]domain.Question, 0, len(doc.Questions))}
		for _, qd := range doc.Questions {
			if owner, dup := questionIDs[qd.ID]; dup {
				return nil, fmt.Errorf("%w: question %q appears in stack %q and %q",
					ErrInvalidFile, qd.ID, owner, doc.ID)
			}
			questionIDs[qd.ID] = doc.ID

			if err := match.Check(qd.Rule); err != nil {
				return nil, fmt.Errorf("%w: question %q: %w", ErrInvalidFile, qd.ID, err)
			}
			stack.Questions = append(stack.Questions, domain.Question{
				ID:      qd.ID,
				StackID: doc.ID,
				Prompt:  qd.Prompt,
				Answers: qd.Answers,
				Rule:    qd.Rule,
			})
		}

		if err := stack.Validate(); err != nil {
			return nil, fmt.Errorf("%w: stack %q: %w", ErrInvalidFile, doc.ID, err)
		}
		stacks = append(stacks, stack)
	}
	return stacks, nil
}
