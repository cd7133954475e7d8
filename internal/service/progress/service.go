// Package progress serves the per-(user, stack) ring of correct/total counts.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/redact"
	"github.com/phrazzld/scry-rings/internal/service"
	"github.com/phrazzld/scry-rings/internal/store"
)

// Service reads rings.
type Service interface {
	// GetRing returns the learner's ring for a stack. A pair that has never
	// received a submission, including a stack that does not exist, yields
	// the zero ring. Only backend faults are errors.
	GetRing(ctx context.Context, userID uuid.UUID, stackID string) (domain.Ring, error)
}

type serviceImpl struct {
	progress store.ProgressStore
	logger   *slog.Logger
}

var _ Service = (*serviceImpl)(nil)

// NewService creates a progress Service.
func NewService(progress store.ProgressStore, logger *slog.Logger) Service {
	if progress == nil {
		panic("progress cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		progress: progress,
		logger:   logger.With(slog.String("component", "progress_service")),
	}
}

// GetRing implements Service.GetRing.
func (s *serviceImpl) GetRing(ctx context.Context, userID uuid.UUID, stackID string) (domain.Ring, error) {
	if strings.TrimSpace(stackID) == "" {
		return domain.Ring{}, domain.NewValidationError("stackId", "is required", domain.ErrInvalidID)
	}

	record, err := s.progress.Get(ctx, userID, stackID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read ring",
			slog.String("user_id", userID.String()),
			slog.String("stack_id", stackID),
			slog.String("error", redact.Error(err)))
		return domain.Ring{}, service.NewServiceError("progress", "get_ring", fmt.Errorf("read ring: %w", err))
	}
	return record.Ring(), nil
}
