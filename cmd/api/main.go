package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dialer_portal_backend/internal/adapters"
	"dialer_portal_backend/internal/adapters/storage"
	"dialer_portal_backend/internal/annotator"
	"dialer_portal_backend/internal/dialer"
	"dialer_portal_backend/internal/events"
	apphttp "dialer_portal_backend/internal/http"
	"dialer_portal_backend/internal/http/router"
	"dialer_portal_backend/internal/recordings"
	"dialer_portal_backend/internal/webhook"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/db"
	"dialer_portal_backend/platform/logger"
	"dialer_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	dialerModule := dialer.NewModule(pool, eventBus, val, cfg, log)

	// Webhook call logs associate back to dialer leads and pool numbers
	leadResolver := adapters.NewDialerLeadResolver(dialerModule.Repository())
	numberResolver := adapters.NewDialerNumberResolver(dialerModule.Repository())
	webhookModule := webhook.NewModule(pool, leadResolver, numberResolver, eventBus, val, log)

	// Recording archival is optional; without MinIO, recording URLs keep
	// pointing at the provider.
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure recordings bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucketExists(ctx, cfg.GetRecordingsBucket())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetRecordingsBucket())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		log.Info("storage service initialized", "recordingsBucket", cfg.GetRecordingsBucket())

		archiver := recordings.New(storageSvc, cfg.GetRecordingsBucket(), webhookModule.Repository(), log, cfg)
		archiver.RegisterHandlers(eventBus)
		webhookModule.SetRecordingPresigner(adapters.NewRecordingPresigner(storageSvc, cfg.GetRecordingsBucket()))
	} else {
		log.Warn("MINIO_ENDPOINT not configured; recording archival disabled")
	}

	modules := []apphttp.Module{
		dialerModule,
		webhookModule,
	}

	// Outcome suggestions are optional and require a Gemini API key
	annotatorSvc, err := annotator.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize annotator", "error", err)
		panic("failed to initialize annotator: " + err.Error())
	}
	if annotatorSvc.Enabled() {
		modules = append(modules, annotator.NewModule(annotatorSvc, val))
		log.Info("annotator initialized", "model", cfg.GetAnnotatorModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; outcome suggestions disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
