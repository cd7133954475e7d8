package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/scry-rings/internal/api/shared"
	"github.com/phrazzld/scry-rings/internal/domain"
)

// maxPathParamLength bounds identifiers taken from the URL path.
const maxPathParamLength = 128

// requireUserID extracts the authenticated user placed in the context by the
// auth middleware. It writes a 401 response and returns false when absent.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathParam extracts a non-empty string identifier from the URL path.
func getPathParam(r *http.Request, paramName string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, paramName))
	if value == "" {
		return "", domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}
	if len(value) > maxPathParamLength {
		return "", domain.NewValidationError(paramName, "is too long", domain.ErrInvalidID)
	}
	return value, nil
}
