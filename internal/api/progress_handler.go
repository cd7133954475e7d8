package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-rings/internal/api/shared"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/service/progress"
)

// ProgressHandler serves ring reads.
type ProgressHandler struct {
	progress progress.Service
	logger   *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progress progress.Service, logger *slog.Logger) *ProgressHandler {
	if progress == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progress cannot be nil for ProgressHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{
		progress: progress,
		logger:   logger.With(slog.String("component", "progress_handler")),
	}
}

// GetRing handles GET /api/progress/ring/{stackId} requests.
// A stack the learner has never answered in yields {0, 0}.
func (h *ProgressHandler) GetRing(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stackID, err := getPathParam(r, "stackId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ring, err := h.progress.GetRing(r.Context(), userID, stackID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ringToResponse(ring))
}
