package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/scry-rings/internal/api"
	apiMiddleware "github.com/phrazzld/scry-rings/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(app.config.Server.RequestTimeoutSeconds+1) * time.Second))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	answerHandler := api.NewAnswerHandler(app.answerService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/answers", answerHandler.SubmitAnswer)
		r.Get("/progress/ring/{stackId}", progressHandler.GetRing)
	})

	r.Get("/health", api.Health)

	return r
}
