package memory

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/store"
)

type progressKey struct {
	userID  uuid.UUID
	stackID string
}

// progressEntry serializes updates to one key so that outcomes on different
// keys never contend.
type progressEntry struct {
	mu     sync.Mutex
	record domain.ProgressRecord
}

const shardCount = 32

// progressShard owns the entries whose key hashes to it. Its lock only
// guards the map; counters are guarded by the entry lock.
type progressShard struct {
	mu      sync.RWMutex
	entries map[progressKey]*progressEntry
}

// ProgressStore is an in-memory implementation of store.ProgressStore.
type ProgressStore struct {
	shards [shardCount]progressShard
	logger *slog.Logger
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// NewProgressStore creates an empty in-memory progress store.
func NewProgressStore(l *slog.Logger) *ProgressStore {
	if l == nil {
		l = slog.Default()
	}
	s := &ProgressStore{
		logger: l.With(slog.String("component", "memory_progress_store")),
	}
	for i := range s.shards {
		s.shards[i].entries = make(map[progressKey]*progressEntry)
	}
	return s
}

// Get implements store.ProgressStore.
func (s *ProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	stackID string,
) (*domain.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := progressKey{userID, stackID}
	shard := s.shard(key)

	shard.mu.RLock()
	entry, ok := shard.entries[key]
	shard.mu.RUnlock()

	if !ok {
		record := domain.NewProgressRecord(userID, stackID)
		return &record, nil
	}

	entry.mu.Lock()
	record := entry.record
	entry.mu.Unlock()
	return &record, nil
}

// ApplyOutcome implements store.ProgressStore.
func (s *ProgressStore) ApplyOutcome(
	ctx context.Context,
	userID uuid.UUID,
	stackID string,
	correct bool,
) (*domain.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry := s.entry(userID, stackID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// The caller may have given up while we waited for the key.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := entry.record.WithOutcome(correct)
	entry.record = next

	logger.FromContextOrDefault(ctx, s.logger).Debug("progress updated",
		slog.String("user_id", userID.String()),
		slog.String("stack_id", stackID),
		slog.Bool("correct", correct),
		slog.Int64("ring_correct", next.Correct),
		slog.Int64("ring_total", next.Total))

	record := next
	return &record, nil
}

// entry returns the entry for a key, creating it on first use.
func (s *ProgressStore) entry(userID uuid.UUID, stackID string) *progressEntry {
	key := progressKey{userID, stackID}
	shard := s.shard(key)

	shard.mu.RLock()
	entry, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		return entry
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if entry, ok := shard.entries[key]; ok {
		return entry
	}
	entry = &progressEntry{record: domain.NewProgressRecord(userID, stackID)}
	shard.entries[key] = entry
	return entry
}

func (s *ProgressStore) shard(key progressKey) *progressShard {
	h := fnv.New32a()
	_, _ = h.Write(key.userID[:])
	_, _ = h.Write([]byte(key.stackID))
	return &s.shards[h.Sum32()%shardCount]
}
