package api

import "github.com/phrazzld/scry-rings/internal/domain"

// SubmitAnswerRequest is the body of POST /api/answers.
type SubmitAnswerRequest struct {
	QuestionID string `json:"questionId" validate:"required,max=128"`
	// StackID is optional; when present the question must belong to it.
	StackID string `json:"stackId,omitempty" validate:"omitempty,max=128"`
	// Input is not validated here so that blank input reaches the service and
	// is reported with its own message.
	Input string `json:"input" validate:"max=4096"`
}

// SubmitAnswerResponse is the body of a successful answer submission.
type SubmitAnswerResponse struct {
	Correct bool `json:"correct"`
}

// RingResponse is the body of GET /api/progress/ring/{stackId}.
type RingResponse struct {
	Correct int64 `json:"correct"`
	Total   int64 `json:"total"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func ringToResponse(r domain.Ring) RingResponse {
	return RingResponse{Correct: r.Correct, Total: r.Total}
}
