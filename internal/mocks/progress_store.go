package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/store"
)

var _ store.ProgressStore = (*MockProgressStore)(nil)

// OutcomeCall records one ApplyOutcome invocation.
type OutcomeCall struct {
	UserID  uuid.UUID
	StackID string
	Correct bool
}

// MockProgressStore implements store.ProgressStore for testing
type MockProgressStore struct {
	// Custom behavior functions
	GetFn          func(ctx context.Context, userID uuid.UUID, stackID string) (*domain.ProgressRecord, error)
	ApplyOutcomeFn func(ctx context.Context, userID uuid.UUID, stackID string, correct bool) (*domain.ProgressRecord, error)

	// Default error returned when no function is set
	Err error

	mu           sync.Mutex
	records      map[string]domain.ProgressRecord
	outcomeCalls []OutcomeCall
	getCalls     int
}

func progressKey(userID uuid.UUID, stackID string) string {
	return userID.String() + "/" + stackID
}

// Get implements the store.ProgressStore interface
func (m *MockProgressStore) Get(ctx context.Context, userID uuid.UUID, stackID string) (*domain.ProgressRecord, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()

	if m.GetFn != nil {
		return m.GetFn(ctx, userID, stackID)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[progressKey(userID, stackID)]
	if !ok {
		rec = domain.NewProgressRecord(userID, stackID)
	}
	return &rec, nil
}

// ApplyOutcome implements the store.ProgressStore interface. Without a custom
// function it keeps counters in memory so tests can observe the effect.
func (m *MockProgressStore) ApplyOutcome(
	ctx context.Context,
	userID uuid.UUID,
	stackID string,
	correct bool,
) (*domain.ProgressRecord, error) {
	m.mu.Lock()
	m.outcomeCalls = append(m.outcomeCalls, OutcomeCall{UserID: userID, StackID: stackID, Correct: correct})
	m.mu.Unlock()

	if m.ApplyOutcomeFn != nil {
		return m.ApplyOutcomeFn(ctx, userID, stackID, correct)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]domain.ProgressRecord)
	}
	key := progressKey(userID, stackID)
	rec, ok := m.records[key]
	if !ok {
		rec = domain.NewProgressRecord(userID, stackID)
	}
	rec = rec.WithOutcome(correct)
	m.records[key] = rec
	return &rec, nil
}

// OutcomeCalls returns a copy of the recorded ApplyOutcome calls.
func (m *MockProgressStore) OutcomeCalls() []OutcomeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OutcomeCall(nil), m.outcomeCalls...)
}

// GetCalls returns how many times Get was called.
func (m *MockProgressStore) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}
