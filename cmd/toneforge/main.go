package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/toneforge/toneforge/internal/adapter/fsregistry"
	tfhttp "github.com/toneforge/toneforge/internal/adapter/http"
	"github.com/toneforge/toneforge/internal/adapter/jsonl"
	tfnats "github.com/toneforge/toneforge/internal/adapter/nats"
	"github.com/toneforge/toneforge/internal/adapter/otel"
	"github.com/toneforge/toneforge/internal/adapter/peftserve"
	"github.com/toneforge/toneforge/internal/adapter/postgres"
	"github.com/toneforge/toneforge/internal/adapter/ristretto"
	"github.com/toneforge/toneforge/internal/adapter/ws"
	"github.com/toneforge/toneforge/internal/config"
	"github.com/toneforge/toneforge/internal/jobs"
	"github.com/toneforge/toneforge/internal/logger"
	"github.com/toneforge/toneforge/internal/port/broadcast"
	"github.com/toneforge/toneforge/internal/port/cache"
	"github.com/toneforge/toneforge/internal/port/events"
	"github.com/toneforge/toneforge/internal/port/ledger"
	"github.com/toneforge/toneforge/internal/resilience"
	"github.com/toneforge/toneforge/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"ledger_backend", cfg.Ledger.Backend,
		"base_model", cfg.ModelServe.BaseModel,
		"min_examples", cfg.Adapters.MinExamples,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	led, cleanupLedger, err := buildLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanupLedger()

	reg, err := fsregistry.New(cfg.Adapters.OutputDir, cfg.Adapters.MarkerFile)
	if err != nil {
		return fmt.Errorf("adapter registry: %w", err)
	}

	// NATS is optional; with no URL configured events are dropped.
	var pub events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		stream, err := tfnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = stream.Close() }()
		pub = stream
		slog.Info("nats connected", "url", cfg.NATS.URL)
	}

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Model sidecar ---

	serve := peftserve.NewClient(cfg.ModelServe)
	serve.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
	if ok, err := serve.Health(ctx); err != nil || !ok {
		slog.Warn("model sidecar not reachable at startup", "url", cfg.ModelServe.URL, "error", err)
	}

	// --- Services ---

	hub := ws.NewHub()
	var caster broadcast.Broadcaster = hub

	adapters := service.NewAdapterCache(reg, serve)
	defer adapters.Close()

	gate := service.NewGate(cfg.Adapters.MinExamples)
	sanitizer := service.NewSanitizer(cfg.Sanitizer)
	runner := jobs.NewGoRunner(cfg.Adapters.MaxParallelTrainings, cfg.Training.JobTimeout)

	var results cache.Cache
	if cfg.Revision.CacheEnabled {
		rc, err := ristretto.New(cfg.Revision.CacheMaxSizeMB << 20)
		if err != nil {
			return fmt.Errorf("revision cache: %w", err)
		}
		defer rc.Close()
		results = rc
	}

	intakeSvc := service.NewIntakeService(led, metrics)
	trainingSvc := service.NewTrainingService(led, gate, serve, reg, adapters, runner, pub, caster, metrics)
	statusSvc := service.NewStatusService(led, reg, adapters, trainingSvc, gate)
	reviser := service.NewReviser(adapters, sanitizer, cfg.Sampling, results, cfg.Revision.CacheTTL, metrics)

	// --- HTTP ---

	handlers := &tfhttp.Handlers{
		Intake:    intakeSvc,
		Training:  trainingSvc,
		Status:    statusSvc,
		Reviser:   reviser,
		BaseModel: cfg.ModelServe.BaseModel,
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(tfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(tfhttp.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/ws", hub.HandleWS)

	// Revision requests wait on the model sidecar, so the API timeout is
	// derived from the sidecar timeout rather than a fixed 30s.
	tfhttp.MountRoutes(r, handlers, cfg.ModelServe.Timeout+10*time.Second)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Revision calls wait on the model sidecar, so writes may take a while.
		WriteTimeout: 2 * cfg.ModelServe.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildLedger constructs the configured ledger backend and returns a cleanup
// function for its resources.
func buildLedger(ctx context.Context, cfg *config.Config) (ledger.Ledger, func(), error) {
	switch cfg.Ledger.Backend {
	case "postgres":
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		slog.Info("postgres ledger ready")
		return postgres.NewLedger(pool), pool.Close, nil
	default:
		led, err := jsonl.New(cfg.Ledger.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("jsonl ledger: %w", err)
		}
		slog.Info("jsonl ledger ready", "path", cfg.Ledger.Path)
		return led, func() {}, nil
	}
}
