package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/database"
	"github.com/lingvoclub/placement-backend/internal/handler"
	"github.com/lingvoclub/placement-backend/internal/logger"
	"github.com/lingvoclub/placement-backend/internal/repository"
	"github.com/lingvoclub/placement-backend/internal/router"
	"github.com/lingvoclub/placement-backend/internal/service"
	"github.com/lingvoclub/placement-backend/internal/validator"
	"github.com/lingvoclub/placement-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Placement Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	sessionLock := repository.NewSessionLock(rdb, cfg.SubmitLockTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, settingRepo)
	placementService := service.NewPlacementService(questionRepo, sessionRepo, sessionLock, log)
	resultService := service.NewResultService(resultRepo, sessionRepo)
	mediaService := service.NewMediaService(cfg)
	analyticsService := service.NewAnalyticsService(analyticsRepo, rdb, log)
	exportService := service.NewExportService(rdb)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Quiz:      handler.NewQuizHandler(placementService, authService, cfg, log),
		Results:   handler.NewResultsHandler(resultService, log),
		Media:     handler.NewMediaHandler(mediaService),
		Admin:     handler.NewAdminHandler(authService, exportService, analyticsService, log),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Monitor:   handler.NewMonitorHandler(authService, analyticsService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	exportWorker := worker.NewExportWorker(resultRepo, rdb, cfg, log)
	go exportWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
