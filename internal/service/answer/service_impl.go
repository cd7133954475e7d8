package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/redact"
	"github.com/phrazzld/scry-rings/internal/service"
	"github.com/phrazzld/scry-rings/internal/store"
)

const serviceName = "answer"

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	questions store.QuestionStore
	progress  store.ProgressStore
	evaluator Evaluator
	timeout   time.Duration
	clock     func() time.Time
	logger    *slog.Logger
}

// Option configures the service.
type Option func(*serviceImpl)

// WithTimeout bounds each submission. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *serviceImpl) { s.timeout = d }
}

// WithClock overrides the clock used to stamp submissions.
func WithClock(clock func() time.Time) Option {
	return func(s *serviceImpl) { s.clock = clock }
}

// NewService creates an answer Service.
func NewService(
	questions store.QuestionStore,
	progress store.ProgressStore,
	evaluator Evaluator,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if questions == nil {
		panic("questions cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		questions: questions,
		progress:  progress,
		evaluator: evaluator,
		clock:     time.Now,
		logger:    logger.With(slog.String("component", "answer_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit implements Service.Submit.
func (s *serviceImpl) Submit(ctx context.Context, sub Submission) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(sub.QuestionID) == "" {
		return nil, domain.NewValidationError("questionId", "is required", domain.ErrInvalidID)
	}
	if strings.TrimSpace(sub.Input) == "" {
		return nil, domain.NewValidationError("input", "cannot be empty", domain.ErrEmptyInput)
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.clock().UTC()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log = log.With(
		slog.String("user_id", sub.UserID.String()),
		slog.String("question_id", sub.QuestionID))

	question, err := s.resolveQuestion(ctx, sub)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("question not found", slog.String("stack_id", sub.StackID), slog.String("error", err.Error()))
			return nil, err
		}
		if ctxErr := contextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error("failed to load question", slog.String("error", redact.Error(err)))
		return nil, service.NewServiceError(serviceName, "submit", fmt.Errorf("load question: %w", err))
	}

	correct, err := s.evaluator.Evaluate(sub.Input, question.Answers, question.Rule)
	if err != nil {
		log.Error("question has an unusable match rule",
			slog.String("stack_id", question.StackID),
			slog.String("mode", string(question.Rule.Mode)),
			slog.String("error", err.Error()))
		return nil, service.NewServiceError(serviceName, "submit", err)
	}

	if ctxErr := contextError(ctx); ctxErr != nil {
		log.Warn("submission abandoned before commit", slog.String("error", ctxErr.Error()))
		return nil, ctxErr
	}

	record, err := s.progress.ApplyOutcome(ctx, sub.UserID, question.StackID, correct)
	if err != nil {
		// A remote backend may have applied the increment before ctx ended.
		if ctxErr := contextError(ctx); ctxErr != nil && errors.Is(err, ctx.Err()) {
			log.Warn("submission outcome unconfirmed", slog.String("error", ctxErr.Error()))
			return nil, ctxErr
		}
		log.Error("failed to record outcome",
			slog.String("stack_id", question.StackID),
			slog.String("error", redact.Error(err)))
		return nil, service.NewServiceError(serviceName, "submit", fmt.Errorf("record outcome: %w", err))
	}

	log.Info("answer submitted",
		slog.String("stack_id", question.StackID),
		slog.Bool("correct", correct),
		slog.Int64("ring_correct", record.Correct),
		slog.Int64("ring_total", record.Total),
		slog.Time("submitted_at", sub.SubmittedAt))

	return &Result{
		Correct:    correct,
		QuestionID: question.ID,
		StackID:    question.StackID,
		Ring:       record.Ring(),
	}, nil
}

// resolveQuestion loads the question. When the submission names a stack, the
// stack must exist and own the question.
func (s *serviceImpl) resolveQuestion(ctx context.Context, sub Submission) (*domain.Question, error) {
	if sub.StackID == "" {
		return s.questions.GetQuestion(ctx, sub.QuestionID)
	}

	stack, err := s.questions.GetStack(ctx, sub.StackID)
	if err != nil {
		return nil, err
	}
	for i := range stack.Questions {
		if stack.Questions[i].ID == sub.QuestionID {
			q := stack.Questions[i]
			q.StackID = stack.ID
			return &q, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in stack %s", store.ErrQuestionNotFound, sub.QuestionID, sub.StackID)
}

// contextError reports why ctx ended, tagging deadline expiry as a timeout.
func contextError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", service.ErrTimeout, err)
	}
	return err
}
