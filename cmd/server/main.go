package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dhrubajit-says/FormForge/internal/cache"
	"github.com/Dhrubajit-says/FormForge/internal/config"
	"github.com/Dhrubajit-says/FormForge/internal/database"
	"github.com/Dhrubajit-says/FormForge/internal/handler"
	"github.com/Dhrubajit-says/FormForge/internal/logger"
	"github.com/Dhrubajit-says/FormForge/internal/repository"
	"github.com/Dhrubajit-says/FormForge/internal/router"
	"github.com/Dhrubajit-says/FormForge/internal/service"
	"github.com/Dhrubajit-says/FormForge/internal/validator"
	"github.com/Dhrubajit-says/FormForge/internal/worker"
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
		Msg("Starting FormForge backend")

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

	// ─── Initialize Repositories & Caches ──────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	scriptRepo := repository.NewAnswerScriptRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	redisCache := cache.NewRedisCache(rdb)
	sharedCache := cache.NewSharedTemplateCache(redisCache, cfg.ShareCacheTTL)
	attemptStore := cache.NewAttemptStore(redisCache)
	sessionStore := cache.NewSessionStore(rdb)
	feed := cache.NewFeed(rdb)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	feedWorker := worker.NewFeedWorker(feed, cfg.FeedQueueSize, log)
	go feedWorker.Start(workerCtx)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, sessionStore)
	templateService := service.NewTemplateService(templateRepo, sharedCache, attemptStore, log)
	scriptService := service.NewAnswerScriptService(scriptRepo, templateRepo, attemptStore, feedWorker, cfg.SubmitGrace, log)
	userService := service.NewUserService(userRepo, templateRepo, sessionStore, templateService, log)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Template:     handler.NewTemplateHandler(templateService, scriptService),
		Public:       handler.NewPublicHandler(templateService, scriptService),
		AnswerScript: handler.NewAnswerScriptHandler(scriptService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Admin:        handler.NewAdminHandler(userService, templateService),
		Feed:         handler.NewFeedHandler(templateService, feed, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	limiters := router.NewLimiters(cfg)
	defer limiters.Stop()
	r := router.SetupRouter(authService, handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// 2. Stop the feed worker and wait for its last batch.
	workerCancel()
	select {
	case <-feedWorker.Done():
	case <-time.After(2 * time.Second):
		log.Warn().Msg("Feed worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
