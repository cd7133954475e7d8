package api

import (
	"net/http"

	"github.com/phrazzld/scry-rings/internal/api/shared"
)

// Health handles GET /health. It reports liveness only.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
