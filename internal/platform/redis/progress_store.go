package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/redact"
	"github.com/phrazzld/scry-rings/internal/store"
)

// applyOutcome runs atomically on the server, so both counters move together
// and concurrent outcomes on one key are serialized.
var applyOutcome = redis.NewScript(`
local total = redis.call("HINCRBY", KEYS[1], "total", 1)
local correct = redis.call("HINCRBY", KEYS[1], "correct", ARGV[1])
return {correct, total}
`)

// ProgressStore keeps one hash per (user, stack):
// HSET progress:ring:{userID}:{stackID} correct {n} total {m}
type ProgressStore struct {
	client redis.UniversalClient
	logger *slog.Logger
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// NewProgressStore creates a Redis-backed progress store.
func NewProgressStore(client redis.UniversalClient, l *slog.Logger) *ProgressStore {
	if l == nil {
		l = slog.Default()
	}
	return &ProgressStore{
		client: client,
		logger: l.With(slog.String("component", "redis_progress_store")),
	}
}

// Get implements store.ProgressStore.
func (s *ProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	stackID string,
) (*domain.ProgressRecord, error) {
	values, err := s.client.HMGet(ctx, key(userID, stackID), "correct", "total").Result()
	if err != nil {
		return nil, s.fail(ctx, "get", userID, stackID, err)
	}

	record := domain.NewProgressRecord(userID, stackID)
	if record.Correct, err = parseCounter(values[0]); err != nil {
		return nil, s.fail(ctx, "get", userID, stackID, err)
	}
	if record.Total, err = parseCounter(values[1]); err != nil {
		return nil, s.fail(ctx, "get", userID, stackID, err)
	}
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

	delta := 0
	if correct {
		delta = 1
	}

	counters, err := applyOutcome.Run(ctx, s.client, []string{key(userID, stackID)}, delta).Int64Slice()
	if err != nil {
		return nil, s.fail(ctx, "apply_outcome", userID, stackID, err)
	}
	if len(counters) != 2 {
		return nil, s.fail(ctx, "apply_outcome", userID, stackID,
			fmt.Errorf("unexpected script reply of length %d", len(counters)))
	}

	record := domain.NewProgressRecord(userID, stackID)
	record.Correct, record.Total = counters[0], counters[1]

	logger.FromContextOrDefault(ctx, s.logger).Debug("progress updated",
		slog.String("user_id", userID.String()),
		slog.String("stack_id", stackID),
		slog.Bool("correct", correct),
		slog.Int64("ring_correct", record.Correct),
		slog.Int64("ring_total", record.Total))
	return &record, nil
}

func (s *ProgressStore) fail(ctx context.Context, op string, userID uuid.UUID, stackID string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("redis progress operation failed",
		slog.String("operation", op),
		slog.String("error", redact.Error(err)),
		slog.String("user_id", userID.String()),
		slog.String("stack_id", stackID))
	return store.NewStorageError("progress", op, err)
}

func key(userID uuid.UUID, stackID string) string {
	return "progress:ring:" + userID.String() + ":" + stackID
}

func parseCounter(v interface{}) (int64, error) {
	switch c := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid counter %q: %w", c, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
}
