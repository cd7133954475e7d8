package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-rings/internal/api/shared"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/redact"
	"github.com/phrazzld/scry-rings/internal/service/answer"
)

// AnswerHandler handles answer submissions.
type AnswerHandler struct {
	answers answer.Service
	logger  *slog.Logger
}

// NewAnswerHandler creates a new AnswerHandler
func NewAnswerHandler(answers answer.Service, logger *slog.Logger) *AnswerHandler {
	if answers == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("answers cannot be nil for AnswerHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AnswerHandler")
	}
	return &AnswerHandler{
		answers: answers,
		logger:  logger.With(slog.String("component", "answer_handler")),
	}
}

// SubmitAnswer handles POST /api/answers requests.
// It judges the learner's input and records the outcome on their ring.
func (h *AnswerHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	result, err := h.answers.Submit(r.Context(), answer.Submission{
		UserID:     userID,
		StackID:    req.StackID,
		QuestionID: req.QuestionID,
		Input:      req.Input,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	log.Debug("answer recorded",
		slog.String("question_id", result.QuestionID),
		slog.String("stack_id", result.StackID),
		slog.Bool("correct", result.Correct))
	shared.RespondWithJSON(w, r, http.StatusOK, SubmitAnswerResponse{Correct: result.Correct})
}
