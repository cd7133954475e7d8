package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/scry-rings/internal/catalog"
	"github.com/phrazzld/scry-rings/internal/config"
	"github.com/phrazzld/scry-rings/internal/domain/match"
	"github.com/phrazzld/scry-rings/internal/platform/memory"
	"github.com/phrazzld/scry-rings/internal/platform/postgres"
	redisstore "github.com/phrazzld/scry-rings/internal/platform/redis"
	"github.com/phrazzld/scry-rings/internal/service/answer"
	"github.com/phrazzld/scry-rings/internal/service/auth"
	"github.com/phrazzld/scry-rings/internal/service/progress"
	"github.com/phrazzld/scry-rings/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Connections, nil when the configured backends do not need them
	db    *sql.DB
	redis redis.UniversalClient

	questionStore store.QuestionStore
	progressStore store.ProgressStore

	jwtService      auth.JWTService
	answerService   answer.Service
	progressService progress.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. An unreachable database or redis server is a startup failure.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	if cfg.NeedsDatabase() {
		app.db, err = setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	if err := app.setupProgressStore(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	if err := app.setupQuestionStore(); err != nil {
		app.cleanup()
		return nil, err
	}

	app.answerService = answer.NewService(
		app.questionStore,
		app.progressStore,
		match.NewEvaluator(),
		logger,
		answer.WithTimeout(time.Duration(cfg.Server.RequestTimeoutSeconds)*time.Second),
	)
	app.progressService = progress.NewService(app.progressStore, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) setupProgressStore(ctx context.Context) error {
	switch app.config.Progress.Backend {
	case config.BackendPostgres:
		app.progressStore = postgres.NewPostgresProgressStore(app.db, app.logger)
	case config.BackendRedis:
		client, err := setupRedis(ctx, app.config.Redis, app.logger)
		if err != nil {
			return err
		}
		app.redis = client
		app.progressStore = redisstore.NewProgressStore(client, app.logger)
	default:
		app.progressStore = memory.NewProgressStore(app.logger)
	}
	app.logger.Info("progress store ready", slog.String("backend", app.config.Progress.Backend))
	return nil
}

func (app *application) setupQuestionStore() error {
	var source store.QuestionStore

	switch app.config.Catalog.Source {
	case config.CatalogPostgres:
		source = postgres.NewPostgresQuestionStore(app.db, app.logger)
	default:
		stacks, err := catalog.LoadFile(app.config.Catalog.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load question catalog: %w", err)
		}
		questions, err := memory.NewQuestionStore(stacks...)
		if err != nil {
			return fmt.Errorf("failed to build question catalog: %w", err)
		}
		app.logger.Info("question catalog loaded",
			slog.String("file", app.config.Catalog.SeedFile),
			slog.Int("stacks", len(stacks)))
		source = questions
	}

	ttl := time.Duration(app.config.Catalog.CacheTTLSeconds) * time.Second
	app.questionStore = catalog.NewCachedStore(source, ttl, app.logger)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
