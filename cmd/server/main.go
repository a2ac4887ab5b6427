// Package main is the entrypoint for the BrandPulse API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandpulse/brandpulse/internal/analyzer"
	"github.com/brandpulse/brandpulse/internal/api"
	"github.com/brandpulse/brandpulse/internal/api/handler"
	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/api/response"
	"github.com/brandpulse/brandpulse/internal/cache"
	"github.com/brandpulse/brandpulse/internal/classify"
	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/engine"
	"github.com/brandpulse/brandpulse/internal/orchestrator"
	"github.com/brandpulse/brandpulse/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create engine gateways and the classifier
	gateways, err := engine.NewGateways(cfg.Engines)
	if err != nil {
		return fmt.Errorf("create engine gateways: %w", err)
	}
	engineNames := make([]string, 0, len(gateways))
	for name := range gateways {
		engineNames = append(engineNames, string(name))
	}
	slog.Info("engine gateways initialized", "engines", engineNames)

	classifier := classify.NewOpenAIClassifier(cfg.Classifier)

	// 6. Create store, analyzer, orchestrator, scheduler
	pgStore := store.NewPostgresStore(pool)
	an := analyzer.New(classifier)
	orch := orchestrator.New(gateways, an, pgStore, redisCache, cfg.Run.PacingDelay)

	scheduler, err := orchestrator.NewScheduler(orch, cfg.Run.ScheduleHour, cfg.Run.ScheduleMinute)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	scheduler.Start()
	slog.Info("daily run scheduled", "hour", cfg.Run.ScheduleHour, "minute", cfg.Run.ScheduleMinute)

	// 7. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	brandHandlers := handler.NewBrandHandlers(pgStore)
	competitorHandlers := handler.NewCompetitorHandlers(pgStore)
	queryHandlers := handler.NewQueryHandlers(pgStore)
	runHandlers := handler.NewRunHandlers(orch, redisCache, pgStore)
	insightHandlers := handler.NewInsightHandlers(pgStore, redisCache)
	resultHandlers := handler.NewResultHandlers(pgStore)
	keyHandlers := handler.NewKeyHandlers(pgStore)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler: healthHandler(pgStore, redisCache),

		CreateBrand: brandHandlers.Create,
		ListBrands:  brandHandlers.List,
		GetBrand:    brandHandlers.Get,
		UpdateBrand: brandHandlers.Update,
		DeleteBrand: brandHandlers.Delete,

		CreateCompetitor: competitorHandlers.Create,
		ListCompetitors:  competitorHandlers.List,
		DeleteCompetitor: competitorHandlers.Delete,

		CreateQuery: queryHandlers.Create,
		ListQueries: queryHandlers.List,
		UpdateQuery: queryHandlers.Update,
		DeleteQuery: queryHandlers.Delete,

		TriggerRun: runHandlers.Trigger,
		RunStatus:  runHandlers.Status,

		Overview:      insightHandlers.Overview,
		Comparison:    insightHandlers.Comparison,
		ResultHistory: resultHandlers.History,

		CreateKeyHandler: keyHandlers.Create,
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
