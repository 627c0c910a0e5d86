// Package app wires repositories, services, and the HTTP router from
// configuration, following hexagonal architecture: main() provides the
// database handles and config, app assembles everything else.
package app

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/akanksha86/governance-metadata-propagation/internal/api"
	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/db/repository"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
	"github.com/akanksha86/governance-metadata-propagation/internal/embedding"
	"github.com/akanksha86/governance-metadata-propagation/internal/hints"
	"github.com/akanksha86/governance-metadata-propagation/internal/middleware"
	"github.com/akanksha86/governance-metadata-propagation/internal/propagate"
	"github.com/akanksha86/governance-metadata-propagation/internal/resolve"
	"github.com/akanksha86/governance-metadata-propagation/internal/steward"
)

// Deps holds the external dependencies that main() must provide: config,
// the metastore handles, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Cfg       *config.Config
	Service   *steward.Service
	Scheduler *steward.Scheduler
	Logger    *slog.Logger
}

// New wires repositories and services from the provided deps.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// === Repositories ===
	schemaRepo := repository.NewSchemaRepo(deps.WriteDB)
	lineageRepo := repository.NewLineageRepo(deps.ReadDB)
	statementRepo := repository.NewStatementRepo(deps.ReadDB)
	glossaryRepo := repository.NewGlossaryRepo(deps.ReadDB)
	linkRepo := repository.NewLinkRepo(deps.WriteDB)
	reviewRepo := repository.NewReviewRepo(deps.WriteDB)

	// === Relationship hints ===
	hintSet, err := hints.Load(cfg.HintsPath)
	if err != nil {
		return nil, err
	}
	var hintSource domain.HintSource
	if hintSet.Len() > 0 {
		hintSource = hintSet
		logger.Info("relationship hints loaded", "path", cfg.HintsPath, "count", hintSet.Len())
	}

	// === Embedding provider (optional) ===
	var embedder domain.Embedder
	if cfg.EmbeddingEndpoint != "" {
		embedder = embedding.NewClient(cfg.EmbeddingEndpoint, time.Duration(cfg.EmbeddingTimeout)*time.Second)
		logger.Info("embedding provider configured", "endpoint", cfg.EmbeddingEndpoint)
	}

	// === Core services ===
	resolver := resolve.NewResolver(cfg.Scoring, lineageRepo, schemaRepo, statementRepo, hintSource, logger)
	engine := propagate.NewEngine(cfg.Scoring, schemaRepo, linkRepo, reviewRepo, logger)
	service := steward.NewService(cfg, schemaRepo, glossaryRepo, embedder, statementRepo, resolver, engine, reviewRepo, logger)
	scheduler := steward.NewScheduler(service, cfg.PropagationSchedule, cfg.ScheduleNamespaces, logger)

	return &App{Cfg: cfg, Service: service, Scheduler: scheduler, Logger: logger}, nil
}

// Router builds the HTTP router: request IDs, CORS, rate limiting, and the
// authenticated /v1 API. Auth is skipped when no JWT secret is configured
// (local development).
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: a.Cfg.RateLimitRPS,
		Burst:             a.Cfg.RateLimitBurst,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.NewHandler(a.Service, a.Logger)
	r.Route("/v1", func(r chi.Router) {
		if a.Cfg.JWTSecret != "" {
			r.Use(middleware.Auth([]byte(a.Cfg.JWTSecret)))
		} else {
			a.Logger.Warn("JWT secret not set, API authentication disabled")
		}
		handler.Register(r)
	})

	return r
}
