package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/scry-rings/internal/api/shared"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	buf, base := logger.NewTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	TraceMiddleware(base)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, traceID, shared.TraceIDLength)
	logger.AssertLogContains(t, buf, "request started")
	logger.AssertLogField(t, buf, "trace_id", traceID)
}

func TestTraceMiddlewareReusesRequestID(t *testing.T) {
	t.Parallel()

	_, base := logger.NewTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(chimw.RequestIDHeader, "upstream-id-42")

	chimw.RequestID(TraceMiddleware(base)(next)).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "upstream-id-42", traceID)
}
