package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-rings/internal/api"
	"github.com/phrazzld/scry-rings/internal/api/middleware"
	"github.com/phrazzld/scry-rings/internal/api/shared"
	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/domain/match"
	"github.com/phrazzld/scry-rings/internal/mocks"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/platform/memory"
	"github.com/phrazzld/scry-rings/internal/service/answer"
	"github.com/phrazzld/scry-rings/internal/service/auth"
	"github.com/phrazzld/scry-rings/internal/service/progress"
	"github.com/phrazzld/scry-rings/internal/store"
)

const validToken = "valid-token"

type testServer struct {
	*httptest.Server
	progress *mocks.MockProgressStore
}

func newTestServer(t *testing.T, userID uuid.UUID, configure ...func(*mocks.MockProgressStore)) *testServer {
	t.Helper()

	_, log := logger.NewTestLogger(t)

	questions := &mocks.MockQuestionStore{
		Questions: map[string]*domain.Question{
			"capital-fr": {
				ID: "capital-fr", StackID: "geo", Answers: []string{"paris"},
				Rule: domain.NormalizedRule(false, true),
			},
			"cat": {
				ID: "cat", StackID: "animals", Answers: []string{"ignored"},
				Rule: domain.RegexRule("^cat$", false),
			},
			"broken": {
				ID: "broken", StackID: "geo", Answers: []string{"x"},
				Rule: domain.RegexRule("(unclosed", false),
			},
		},
	}
	progressStore := &mocks.MockProgressStore{}
	for _, fn := range configure {
		fn(progressStore)
	}

	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != validToken {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID}, nil
		},
	}

	answerHandler := api.NewAnswerHandler(
		answer.NewService(questions, progressStore, match.NewEvaluator(), log), log)
	progressHandler := api.NewProgressHandler(progress.NewService(progressStore, log), log)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(log))
	r.Get("/health", api.Health)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(jwtService).Authenticate)
		r.Post("/api/answers", answerHandler.SubmitAnswer)
		r.Get("/api/progress/ring/{stackId}", progressHandler.GetRing)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, progress: progressStore}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		token       string
		body        string
		wantStatus  int
		wantCorrect bool
		wantError   string
	}{
		{"normalized match", validToken, `{"questionId":"capital-fr","input":"  Paris  "}`,
			http.StatusOK, true, ""},
		{"wrong answer", validToken, `{"questionId":"capital-fr","input":"Lyon"}`,
			http.StatusOK, false, ""},
		{"regex match", validToken, `{"questionId":"cat","input":"CAT"}`,
			http.StatusOK, true, ""},
		{"regex whole string", validToken, `{"questionId":"cat","input":"cats"}`,
			http.StatusOK, false, ""},
		{"matching stack", validToken, `{"questionId":"capital-fr","stackId":"geo","input":"paris"}`,
			http.StatusOK, true, ""},
		{"empty input", validToken, `{"questionId":"capital-fr","input":"   "}`,
			http.StatusBadRequest, false, "Input cannot be empty"},
		{"missing question id", validToken, `{"input":"paris"}`,
			http.StatusBadRequest, false, "Invalid questionId: required field"},
		{"malformed body", validToken, `{"questionId":`,
			http.StatusBadRequest, false, "Invalid request format"},
		{"empty body", validToken, ``,
			http.StatusBadRequest, false, "Invalid request format"},
		{"unknown question", validToken, `{"questionId":"nope","input":"x"}`,
			http.StatusNotFound, false, "Question not found"},
		{"question outside stack", validToken, `{"questionId":"cat","stackId":"geo","input":"cat"}`,
			http.StatusNotFound, false, "Question not found"},
		{"unknown stack", validToken, `{"questionId":"capital-fr","stackId":"history","input":"paris"}`,
			http.StatusNotFound, false, "Stack not found"},
		{"invalid rule", validToken, `{"questionId":"broken","input":"x"}`,
			http.StatusInternalServerError, false, "Failed to submit answer"},
		{"missing credential", "", `{"questionId":"capital-fr","input":"paris"}`,
			http.StatusUnauthorized, false, "Authorization header required"},
		{"bad credential", "forged", `{"questionId":"capital-fr","input":"paris"}`,
			http.StatusUnauthorized, false, "Invalid token"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, uuid.New())
			resp, body := srv.do(t, http.MethodPost, "/api/answers", tt.token, tt.body)

			require.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			if tt.wantStatus == http.StatusOK {
				var got api.SubmitAnswerResponse
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, tt.wantCorrect, got.Correct)
				assert.Len(t, srv.progress.OutcomeCalls(), 1)
				return
			}

			var errResp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tt.wantError, errResp.Error)
			assert.NotEmpty(t, errResp.TraceID)
			assert.Empty(t, srv.progress.OutcomeCalls(), "failed submissions must not touch the ring")
		})
	}
}

func TestRingEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, uuid.New())

	ring := func() api.RingResponse {
		resp, body := srv.do(t, http.MethodGet, "/api/progress/ring/geo", validToken, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var got api.RingResponse
		require.NoError(t, json.Unmarshal(body, &got))
		return got
	}

	assert.Equal(t, api.RingResponse{Correct: 0, Total: 0}, ring())

	resp, _ := srv.do(t, http.MethodPost, "/api/answers", validToken, `{"questionId":"capital-fr","input":"Paris"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.RingResponse{Correct: 1, Total: 1}, ring())

	resp, _ = srv.do(t, http.MethodPost, "/api/answers", validToken, `{"questionId":"capital-fr","input":"Rome"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.RingResponse{Correct: 1, Total: 2}, ring())

	// Other stacks are unaffected.
	resp, body := srv.do(t, http.MethodGet, "/api/progress/ring/animals", validToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"correct":0,"total":0}`, string(body))
}

func TestRingEndpointErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, uuid.New())
	resp, _ := srv.do(t, http.MethodGet, "/api/progress/ring/geo", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	faulty := newTestServer(t, uuid.New(), func(m *mocks.MockProgressStore) {
		m.Err = store.NewStorageError("progress", "get", errors.New("redis: connection refused"))
	})
	resp, body := faulty.do(t, http.MethodGet, "/api/progress/ring/geo", validToken, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "redis")
}

func TestConcurrentSubmissionsOverHTTP(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, uuid.New())

	var wg sync.WaitGroup
	for _, input := range []string{"paris", "berlin"} {
		wg.Add(1)
		go func(input string) {
			defer wg.Done()
			resp, _ := srv.do(t, http.MethodPost, "/api/answers", validToken,
				fmt.Sprintf(`{"questionId":"capital-fr","input":%q}`, input))
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}(input)
	}
	wg.Wait()

	resp, body := srv.do(t, http.MethodGet, "/api/progress/ring/geo", validToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"correct":1,"total":2}`, string(body))
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, uuid.New())
	resp, body := srv.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestHandlersWithMemoryBackend(t *testing.T) {
	t.Parallel()

	_, log := logger.NewTestLogger(t)
	userID := uuid.New()

	questions, err := memory.NewQuestionStore(&domain.Stack{
		ID: "geo",
		Questions: []domain.Question{{
			ID: "capital-fr", StackID: "geo", Answers: []string{"paris"},
			Rule: domain.ExactRule(false),
		}},
	})
	require.NoError(t, err)
	progressStore := memory.NewProgressStore(log)

	answers := api.NewAnswerHandler(answer.NewService(questions, progressStore, match.NewEvaluator(), log), log)
	rings := api.NewProgressHandler(progress.NewService(progressStore, log), log)

	r := chi.NewRouter()
	r.Post("/api/answers", answers.SubmitAnswer)
	r.Get("/api/progress/ring/{stackId}", rings.GetRing)

	submit := func(input string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/answers",
			strings.NewReader(fmt.Sprintf(`{"questionId":"capital-fr","input":%q}`, input)))
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusOK, submit("PARIS"))
	require.Equal(t, http.StatusOK, submit("paris!"))

	req := httptest.NewRequest(http.MethodGet, "/api/progress/ring/geo", nil)
	req = req.WithContext(shared.WithUserID(req.Context(), userID))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"correct":1,"total":2}`, rr.Body.String())

	// Without the auth middleware there is no user in the context.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/progress/ring/geo", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
