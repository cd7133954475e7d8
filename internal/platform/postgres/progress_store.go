package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/redact"
	"github.com/phrazzld/scry-rings/internal/store"
)

// applyOutcomeQuery creates the row on first use and otherwise increments it
// in place. The row lock taken by ON CONFLICT DO UPDATE serializes concurrent
// outcomes on the same key; RETURNING yields the committed counters.
const applyOutcomeQuery = `
	INSERT INTO ring_progress (user_id, stack_id, correct, total)
	VALUES ($1, $2, $3, 1)
	ON CONFLICT (user_id, stack_id) DO UPDATE
	SET correct = ring_progress.correct + EXCLUDED.correct,
	    total = ring_progress.total + 1,
	    updated_at = NOW()
	RETURNING correct, total
`

// PostgresProgressStore implements store.ProgressStore on the ring_progress table.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Get implements store.ProgressStore.Get.
func (s *PostgresProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	stackID string,
) (*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record := domain.NewProgressRecord(userID, stackID)
	err := s.db.QueryRowContext(ctx,
		`SELECT correct, total FROM ring_progress WHERE user_id = $1 AND stack_id = $2`,
		userID, stackID,
	).Scan(&record.Correct, &record.Total)

	if errors.Is(err, sql.ErrNoRows) {
		return &record, nil
	}
	if err != nil {
		log.Error("failed to read ring progress",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("stack_id", stackID))
		return nil, s.wrap("get", err)
	}
	return &record, nil
}

// ApplyOutcome implements store.ProgressStore.ApplyOutcome.
// The statement runs in its own implicit transaction, so a nil error means
// the increment is committed.
func (s *PostgresProgressStore) ApplyOutcome(
	ctx context.Context,
	userID uuid.UUID,
	stackID string,
	correct bool,
) (*domain.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var delta int64
	if correct {
		delta = 1
	}

	record := domain.NewProgressRecord(userID, stackID)
	err := s.db.QueryRowContext(ctx, applyOutcomeQuery, userID, stackID, delta).
		Scan(&record.Correct, &record.Total)
	if err != nil {
		log.Error("failed to apply outcome",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("stack_id", stackID),
			slog.Bool("correct", correct))
		return nil, s.wrap("apply_outcome", err)
	}

	log.Debug("progress updated",
		slog.String("user_id", userID.String()),
		slog.String("stack_id", stackID),
		slog.Bool("correct", correct),
		slog.Int64("ring_correct", record.Correct),
		slog.Int64("ring_total", record.Total))
	return &record, nil
}

// wrap maps a driver error for the caller. Cancellation stays a context
// error; everything else becomes a StoreError.
func (s *PostgresProgressStore) wrap(op string, err error) error {
	mapped := MapError(err)
	if errors.Is(mapped, context.Canceled) || errors.Is(mapped, context.DeadlineExceeded) {
		return mapped
	}
	return store.NewStoreError("progress", op, "query failed", mapped)
}
