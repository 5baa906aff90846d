package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certilearn/assess-backend/internal/config"
	"github.com/certilearn/assess-backend/internal/database"
	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/execsvc"
	"github.com/certilearn/assess-backend/internal/handler"
	"github.com/certilearn/assess-backend/internal/logger"
	"github.com/certilearn/assess-backend/internal/repository"
	"github.com/certilearn/assess-backend/internal/router"
	"github.com/certilearn/assess-backend/internal/service"
	"github.com/certilearn/assess-backend/internal/validator"
	"github.com/certilearn/assess-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting Assess Backend")

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
	attemptRepo := repository.NewAttemptRepository(pool)
	bankRepo := repository.NewQuestionBankRepository(pool)
	specRepo := repository.NewTestSpecRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	reviewerRepo := repository.NewReviewerRepository(pool)

	// ─── Initialize Engine ─────────────────────────────────────────────
	registry := engine.NewRegistry()
	assembler := engine.NewAssembler()
	executor := execsvc.New(cfg, log)
	scorer := engine.NewScorer(executor)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	attemptService := service.NewAttemptService(
		attemptRepo, specRepo, bankRepo, violationRepo,
		assembler, scorer, registry, rdb, log,
	)
	bankService := service.NewBankService(bankRepo)
	specService := service.NewSpecService(specRepo, bankRepo)
	reviewService := service.NewReviewService(reviewRepo, attemptRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, reviewerRepo),
		Attempt: handler.NewAttemptHandler(attemptService),
		Bank:    handler.NewBankHandler(bankService),
		Spec:    handler.NewSpecHandler(specService),
		Review:  handler.NewReviewHandler(reviewService, attemptService),
		Monitor: handler.NewMonitorHandler(rdb, attemptService, log, cfg.AllowedOrigins),
		Health:  handler.NewHealthHandler(pool, rdb, registry),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	violationWorker := worker.NewViolationWorker(violationRepo, rdb, log)
	expiryWorker := worker.NewExpiryWorker(attemptService, cfg.ExpirySweepInterval, log)

	go violationWorker.Start(workerCtx)
	go expiryWorker.Start(workerCtx)

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
