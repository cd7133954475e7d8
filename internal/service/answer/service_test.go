package answer_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-rings/internal/catalog"
	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/domain/match"
	"github.com/phrazzld/scry-rings/internal/mocks"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/platform/memory"
	"github.com/phrazzld/scry-rings/internal/service"
	"github.com/phrazzld/scry-rings/internal/service/answer"
	"github.com/phrazzld/scry-rings/internal/store"
)

func testQuestions() *mocks.MockQuestionStore {
	return &mocks.MockQuestionStore{
		Questions: map[string]*domain.Question{
			"fr":     {ID: "fr", StackID: "geo", Answers: []string{"paris"}, Rule: domain.MatchRule{Mode: domain.MatchModeNormalized}},
			"cat":    {ID: "cat", StackID: "animals", Answers: []string{"unused"}, Rule: domain.RegexRule("cat", true)},
			"broken": {ID: "broken", StackID: "geo", Answers: []string{"x"}, Rule: domain.RegexRule("(unclosed", false)},
		},
	}
}

func newService(questions store.QuestionStore, progress store.ProgressStore, opts ...answer.Option) answer.Service {
	return answer.NewService(questions, progress, match.NewEvaluator(), nil, opts...)
}

func TestSubmit(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name        string
		sub         answer.Submission
		wantCorrect bool
		wantErr     error
		wantOutcome bool
	}{
		{
			name:        "normalized match",
			sub:         answer.Submission{UserID: userID, QuestionID: "fr", Input: "  Paris  "},
			wantCorrect: true,
			wantOutcome: true,
		},
		{
			name:        "wrong answer still counts",
			sub:         answer.Submission{UserID: userID, QuestionID: "fr", Input: "Lyon"},
			wantCorrect: false,
			wantOutcome: true,
		},
		{
			name:        "regex case sensitive rejects",
			sub:         answer.Submission{UserID: userID, QuestionID: "cat", Input: "CAT"},
			wantCorrect: false,
			wantOutcome: true,
		},
		{
			name:        "matching stack id",
			sub:         answer.Submission{UserID: userID, StackID: "geo", QuestionID: "fr", Input: "paris"},
			wantCorrect: true,
			wantOutcome: true,
		},
		{
			name:    "empty input",
			sub:     answer.Submission{UserID: userID, QuestionID: "fr", Input: ""},
			wantErr: domain.ErrEmptyInput,
		},
		{
			name:    "whitespace only input",
			sub:     answer.Submission{UserID: userID, QuestionID: "fr", Input: " \t\n"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing question id",
			sub:     answer.Submission{UserID: userID, Input: "paris"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown question",
			sub:     answer.Submission{UserID: userID, QuestionID: "nope", Input: "paris"},
			wantErr: store.ErrNotFound,
		},
		{
			name:    "unknown stack",
			sub:     answer.Submission{UserID: userID, StackID: "history", QuestionID: "fr", Input: "paris"},
			wantErr: store.ErrStackNotFound,
		},
		{
			name:    "question from another stack",
			sub:     answer.Submission{UserID: userID, StackID: "animals", QuestionID: "fr", Input: "paris"},
			wantErr: store.ErrQuestionNotFound,
		},
		{
			name:    "invalid rule never touches progress",
			sub:     answer.Submission{UserID: userID, QuestionID: "broken", Input: "x"},
			wantErr: match.ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := &mocks.MockProgressStore{}
			svc := newService(testQuestions(), progress)

			result, err := svc.Submit(context.Background(), tt.sub)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				assert.Empty(t, progress.OutcomeCalls())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, result.Correct)
			calls := progress.OutcomeCalls()
			require.Len(t, calls, 1, "exactly one outcome per submission")
			assert.Equal(t, tt.sub.UserID, calls[0].UserID)
			assert.Equal(t, tt.wantCorrect, calls[0].Correct)
			assert.Equal(t, result.StackID, calls[0].StackID)
			assert.Equal(t, domain.Ring{Correct: boolToInt(tt.wantCorrect), Total: 1}, result.Ring)
		})
	}
}

func TestSubmitInvalidRuleIsInspectable(t *testing.T) {
	svc := newService(testQuestions(), &mocks.MockProgressStore{})

	_, err := svc.Submit(context.Background(), answer.Submission{UserID: uuid.New(), QuestionID: "broken", Input: "x"})

	var ruleErr *match.InvalidRuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "(unclosed", ruleErr.Pattern)

	var svcErr *service.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "answer", svcErr.Service)
}

func TestSubmitUsesOwningStack(t *testing.T) {
	progress := &mocks.MockProgressStore{}
	svc := newService(testQuestions(), progress)

	result, err := svc.Submit(context.Background(), answer.Submission{UserID: uuid.New(), QuestionID: "cat", Input: "cat"})

	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, "animals", result.StackID)
	assert.Equal(t, "animals", progress.OutcomeCalls()[0].StackID)
}

func TestSubmitNamedStackResolvesThroughStack(t *testing.T) {
	questions := testQuestions()
	progress := &mocks.MockProgressStore{}
	svc := newService(questions, progress)

	result, err := svc.Submit(context.Background(),
		answer.Submission{UserID: uuid.New(), StackID: "geo", QuestionID: "fr", Input: "Paris"})

	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, "geo", result.StackID)
	assert.Empty(t, questions.GetQuestionCalls(), "a named stack is loaded as a whole")
}

func TestSubmitSurvivesCancelledPeerOnSharedLookup(t *testing.T) {
	gate := make(chan struct{})
	var lookups atomic.Int32
	backend := testQuestions()
	fr := backend.Questions["fr"]
	backend.GetQuestionFn = func(ctx context.Context, _ string) (*domain.Question, error) {
		lookups.Add(1)
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		c := *fr
		return &c, nil
	}
	progress := memory.NewProgressStore(nil)
	svc := newService(catalog.NewCachedStore(backend, time.Minute, nil), progress)
	userID := uuid.New()

	peerCtx, cancelPeer := context.WithCancel(context.Background())
	peerErr := make(chan error, 1)
	go func() {
		_, err := svc.Submit(peerCtx, answer.Submission{UserID: uuid.New(), QuestionID: "fr", Input: "paris"})
		peerErr <- err
	}()
	require.Eventually(t, func() bool { return lookups.Load() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		result *answer.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := svc.Submit(context.Background(), answer.Submission{UserID: userID, QuestionID: "fr", Input: "paris"})
		done <- outcome{r, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelPeer()
	assert.ErrorIs(t, <-peerErr, context.Canceled)
	close(gate)

	got := <-done
	require.NoError(t, got.err)
	assert.True(t, got.result.Correct)
	assert.Equal(t, domain.Ring{Correct: 1, Total: 1}, got.result.Ring)
	assert.Equal(t, int32(1), lookups.Load())
}

func TestSubmitStorageFailure(t *testing.T) {
	backendErr := store.NewStorageError("progress", "apply_outcome", errors.New("connection reset"))
	progress := &mocks.MockProgressStore{Err: backendErr}
	svc := newService(testQuestions(), progress)

	result, err := svc.Submit(context.Background(), answer.Submission{UserID: uuid.New(), QuestionID: "fr", Input: "paris"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, store.ErrStorage)
	var svcErr *service.ServiceError
	assert.True(t, errors.As(err, &svcErr))
}

func TestSubmitQuestionLookupFailure(t *testing.T) {
	questions := &mocks.MockQuestionStore{Err: store.NewStorageError("question", "get", errors.New("timeout"))}
	progress := &mocks.MockProgressStore{}
	svc := newService(questions, progress)

	_, err := svc.Submit(context.Background(), answer.Submission{UserID: uuid.New(), QuestionID: "fr", Input: "paris"})

	assert.ErrorIs(t, err, store.ErrStorage)
	assert.Empty(t, progress.OutcomeCalls())
}

func TestSubmitCancelledBeforeCommit(t *testing.T) {
	progress := &mocks.MockProgressStore{}
	svc := newService(testQuestions(), progress)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Submit(ctx, answer.Submission{UserID: uuid.New(), QuestionID: "fr", Input: "paris"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, progress.OutcomeCalls(), "no outcome after cancellation")
}

func TestSubmitCancelledDuringCommitIsUnconfirmed(t *testing.T) {
	ctx, buf := logger.NewLogCaptureContext(t)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The backend applies the increment, then the caller goes away before
	// the acknowledgement arrives.
	applied := 0
	progress := &mocks.MockProgressStore{
		ApplyOutcomeFn: func(ctx context.Context, _ uuid.UUID, _ string, _ bool) (*domain.ProgressRecord, error) {
			applied++
			cancel()
			return nil, ctx.Err()
		},
	}
	svc := newService(testQuestions(), progress)

	result, err := svc.Submit(ctx, answer.Submission{UserID: uuid.New(), QuestionID: "fr", Input: "paris"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, applied)
	logger.AssertLogContains(t, buf, "submission outcome unconfirmed")
}

func TestSubmitTimeout(t *testing.T) {
	questions := testQuestions()
	slow := questions.Questions["fr"]
	questions.GetQuestionFn = func(ctx context.Context, _ string) (*domain.Question, error) {
		<-ctx.Done()
		return slow, nil
	}
	progress := &mocks.MockProgressStore{}
	svc := newService(questions, progress, answer.WithTimeout(10*time.Millisecond))

	_, err := svc.Submit(context.Background(), answer.Submission{UserID: uuid.New(), QuestionID: "fr", Input: "paris"})

	assert.ErrorIs(t, err, service.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, progress.OutcomeCalls())
}

func TestSubmitEndToEndRing(t *testing.T) {
	ctx := context.Background()
	progress := memory.NewProgressStore(nil)
	svc := newService(testQuestions(), progress)
	userID := uuid.New()

	result, err := svc.Submit(ctx, answer.Submission{UserID: userID, QuestionID: "fr", Input: "Paris"})
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, domain.Ring{Correct: 1, Total: 1}, result.Ring)

	result, err = svc.Submit(ctx, answer.Submission{UserID: userID, QuestionID: "fr", Input: "Rome"})
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, domain.Ring{Correct: 1, Total: 2}, result.Ring)
}

func TestSubmitConcurrentPairOnEmptyKey(t *testing.T) {
	ctx := context.Background()
	progress := memory.NewProgressStore(nil)
	svc := newService(testQuestions(), progress)
	userID := uuid.New()

	var wg sync.WaitGroup
	for _, input := range []string{"paris", "berlin"} {
		wg.Add(1)
		go func(input string) {
			defer wg.Done()
			_, err := svc.Submit(ctx, answer.Submission{UserID: userID, QuestionID: "fr", Input: input})
			assert.NoError(t, err)
		}(input)
	}
	wg.Wait()

	rec, err := progress.Get(ctx, userID, "geo")
	require.NoError(t, err)
	assert.Equal(t, domain.Ring{Correct: 1, Total: 2}, rec.Ring())
}

func TestSubmitOrderIndependence(t *testing.T) {
	ctx := context.Background()
	inputs := []string{"paris", "x", "PARIS", "y", " paris "}

	run := func(order []string) domain.Ring {
		progress := memory.NewProgressStore(nil)
		svc := newService(testQuestions(), progress)
		userID := uuid.New()
		for _, in := range order {
			_, err := svc.Submit(ctx, answer.Submission{UserID: userID, QuestionID: "fr", Input: in})
			require.NoError(t, err)
		}
		rec, err := progress.Get(ctx, userID, "geo")
		require.NoError(t, err)
		return rec.Ring()
	}

	reversed := make([]string, len(inputs))
	for i, in := range inputs {
		reversed[len(inputs)-1-i] = in
	}

	want := domain.Ring{Correct: 3, Total: 5}
	assert.Equal(t, want, run(inputs))
	assert.Equal(t, want, run(reversed))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
