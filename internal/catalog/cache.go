package catalog

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/store"
)

// lookupTimeout bounds a backend lookup shared by coalesced callers.
const lookupTimeout = 10 * time.Second

// CachedStore is a read-through TTL cache in front of a QuestionStore.
// Concurrent misses for the same key share one backend lookup. Not-found
// results are not cached, so a freshly imported stack is visible on the next
// request.
type CachedStore struct {
	next   store.QuestionStore
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	logger *slog.Logger

	mu        sync.RWMutex
	questions map[string]cachedQuestion
	stacks    map[string]cachedStack
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

type cachedStack struct {
	stack     domain.Stack
	expiresAt time.Time
}

var _ store.QuestionStore = (*CachedStore)(nil)

// NewCachedStore wraps next. A non-positive ttl disables caching but keeps
// request coalescing.
func NewCachedStore(next store.QuestionStore, ttl time.Duration, l *slog.Logger) *CachedStore {
	if l == nil {
		l = slog.Default()
	}
	return &CachedStore{
		next:      next,
		ttl:       ttl,
		clock:     time.Now,
		logger:    l.With(slog.String("component", "question_cache")),
		questions: make(map[string]cachedQuestion),
		stacks:    make(map[string]cachedStack),
	}
}

// GetQuestion implements store.QuestionStore.
func (c *CachedStore) GetQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	if q, ok := c.cachedQuestion(questionID); ok {
		return q, nil
	}

	result, shared, err := c.do(ctx, "question:"+questionID, func(ctx context.Context) (interface{}, error) {
		if q, ok := c.cachedQuestion(questionID); ok {
			return q, nil
		}
		q, err := c.next.GetQuestion(ctx, questionID)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.questions[questionID] = cachedQuestion{question: *q, expiresAt: c.clock().Add(c.ttlWithJitter())}
			c.mu.Unlock()
		}
		return q, nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, c.logger).Debug("question cache miss",
		slog.String("question_id", questionID),
		slog.Bool("shared", shared))
	return copyQuestion(result.(*domain.Question)), nil
}

// GetStack implements store.QuestionStore.
func (c *CachedStore) GetStack(ctx context.Context, stackID string) (*domain.Stack, error) {
	if s, ok := c.cachedStack(stackID); ok {
		return s, nil
	}

	result, _, err := c.do(ctx, "stack:"+stackID, func(ctx context.Context) (interface{}, error) {
		if s, ok := c.cachedStack(stackID); ok {
			return s, nil
		}
		s, err := c.next.GetStack(ctx, stackID)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.stacks[stackID] = cachedStack{stack: *s, expiresAt: c.clock().Add(c.ttlWithJitter())}
			c.mu.Unlock()
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return copyStack(result.(*domain.Stack)), nil
}

// do runs fn once per key for all concurrent callers. The shared lookup is
// detached from any single caller's cancellation and bounded by
// lookupTimeout; each caller stops waiting when its own ctx ends.
func (c *CachedStore) do(
	ctx context.Context,
	key string,
	fn func(context.Context) (interface{}, error),
) (interface{}, bool, error) {
	ch := c.sf.DoChan(key, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return fn(lookupCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (c *CachedStore) cachedQuestion(id string) (*domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.questions[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return copyQuestion(&entry.question), true
}

func (c *CachedStore) cachedStack(id string) (*domain.Stack, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.stacks[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return copyStack(&entry.stack), true
}

// ttlWithJitter adds up to 10% to spread expirations.
func (c *CachedStore) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

// Cached values are shared between callers; hand out copies so a caller
// cannot mutate another's answers.
func copyQuestion(q *domain.Question) *domain.Question {
	c := *q
	c.Answers = append([]string(nil), q.Answers...)
	return &c
}

func copyStack(s *domain.Stack) *domain.Stack {
	c := *s
	c.Questions = make([]domain.Question, len(s.Questions))
	for i := range s.Questions {
		c.Questions[i] = *copyQuestion(&s.Questions[i])
	}
	return &c
}
