package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/redact"
	"github.com/phrazzld/scry-rings/internal/store"
)

// PostgresQuestionStore implements store.QuestionStore and store.StackWriter.
// Answers and match rules are stored as JSONB using the domain JSON schema.
type PostgresQuestionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ store.QuestionStore = (*PostgresQuestionStore)(nil)
	_ store.StackWriter   = (*PostgresQuestionStore)(nil)
)

// NewPostgresQuestionStore creates a new question store. It needs a *sql.DB
// rather than a DBTX because imports run in their own transaction.
func NewPostgresQuestionStore(db *sql.DB, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var (
		q       domain.Question
		answers []byte
		rule    []byte
	)
	if err := row.Scan(&q.ID, &q.StackID, &q.Prompt, &answers, &rule); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &q.Answers); err != nil {
		return nil, fmt.Errorf("decode answers of question %s: %w", q.ID, err)
	}
	if err := json.Unmarshal(rule, &q.Rule); err != nil {
		return nil, fmt.Errorf("decode rule of question %s: %w", q.ID, err)
	}
	return &q, nil
}

// GetQuestion implements store.QuestionStore.GetQuestion.
func (s *PostgresQuestionStore) GetQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, stack_id, prompt, answers, rule FROM questions WHERE id = $1`,
		questionID)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("question not found", slog.String("question_id", questionID))
		return nil, store.ErrQuestionNotFound
	}
	if err != nil {
		log.Error("failed to get question",
			slog.String("error", redact.Error(err)),
			slog.String("question_id", questionID))
		return nil, store.NewStoreError("question", "get", "query failed", MapError(err))
	}
	return q, nil
}

// GetStack implements store.QuestionStore.GetStack.
func (s *PostgresQuestionStore) GetStack(ctx context.Context, stackID string) (*domain.Stack, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stack := &domain.Stack{ID: stackID}
	err := s.db.QueryRowContext(ctx, `SELECT title FROM stacks WHERE id = $1`, stackID).Scan(&stack.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrStackNotFound
	}
	if err != nil {
		log.Error("failed to get stack",
			slog.String("error", redact.Error(err)),
			slog.String("stack_id", stackID))
		return nil, store.NewStoreError("stack", "get", "query failed", MapError(err))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stack_id, prompt, answers, rule
		FROM questions
		WHERE stack_id = $1
		ORDER BY position
	`, stackID)
	if err != nil {
		return nil, store.NewStoreError("stack", "get", "query questions failed", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, store.NewStoreError("stack", "get", "scan question failed", MapError(err))
		}
		stack.Questions = append(stack.Questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("stack", "get", "iterate questions failed", MapError(err))
	}
	return stack, nil
}

// SaveStack implements store.StackWriter.SaveStack. The stack row is upserted
// and its question set replaced in one transaction. Progress rows are keyed
// by stack id only and survive a re-import.
func (s *PostgresQuestionStore) SaveStack(ctx context.Context, stack *domain.Stack) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if stack == nil {
		return fmt.Errorf("%w: nil stack", store.ErrInvalidEntity)
	}
	if err := stack.Validate(); err != nil {
		log.Warn("stack validation failed during save",
			slog.String("error", err.Error()),
			slog.String("stack_id", stack.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stacks (id, title) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, updated_at = NOW()
		`, stack.ID, stack.Title); err != nil {
			return MapError(err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE stack_id = $1`, stack.ID); err != nil {
			return MapError(err)
		}

		for i := range stack.Questions {
			q := &stack.Questions[i]
			answers, err := json.Marshal(q.Answers)
			if err != nil {
				return fmt.Errorf("encode answers of question %s: %w", q.ID, err)
			}
			rule, err := json.Marshal(q.Rule)
			if err != nil {
				return fmt.Errorf("encode rule of question %s: %w", q.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO questions (id, stack_id, position, prompt, answers, rule)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, q.ID, stack.ID, i, q.Prompt, answers, rule); err != nil {
				if IsUniqueViolation(err) {
					return fmt.Errorf("%w: question %q already belongs to another stack",
						store.ErrDuplicate, q.ID)
				}
				return MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save stack",
			slog.String("error", redact.Error(err)),
			slog.String("stack_id", stack.ID))
		return err
	}

	log.Info("stack saved",
		slog.String("stack_id", stack.ID),
		slog.Int("question_count", len(stack.Questions)))
	return nil
}
