package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Dhrubajit-says/FormForge/internal/cache"
	"github.com/Dhrubajit-says/FormForge/internal/config"
	"github.com/Dhrubajit-says/FormForge/internal/database"
	"github.com/Dhrubajit-says/FormForge/internal/logger"
	"github.com/Dhrubajit-says/FormForge/internal/repository"
	"github.com/Dhrubajit-says/FormForge/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: set-admin <email>")
		os.Exit(2)
	}
	email := os.Args[1]

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	// Without Redis the promotion still happens; old tokens keep the USER
	// role until they expire.
	var sessions service.SessionStore
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, existing sessions are not revoked")
	} else {
		defer rdb.Close()
		sessions = cache.NewSessionStore(rdb)
	}

	// ─── Initialize Service ────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	userService := service.NewUserService(userRepo, templateRepo, sessions, nil, log)

	fmt.Println("=== Promote User to Admin ===")

	user, err := userService.PromoteByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("Failed to promote user")
	}

	fmt.Printf("\nSuccess! '%s' (%s) now has the %s role.\n", user.Username, user.Email, user.Role)
}
