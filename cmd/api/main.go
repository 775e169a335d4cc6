package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"artforge/internal/cache"
	"artforge/internal/config"
	"artforge/internal/database"
	"artforge/internal/generation"
	"artforge/internal/handlers"
	"artforge/internal/inspiration"
	"artforge/internal/jobs"
	"artforge/internal/log"
	"artforge/internal/prompt"
	"artforge/internal/repository"
	"artforge/internal/server"
	"artforge/internal/service"
	"artforge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.Migrate(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	// Redis only backs the maintenance queue and the quote cache.
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("maintenance scheduling and quote cache disabled")
	}

	artifacts, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to init artifact store")
	}

	users := repository.NewUserRepository(dbPool)
	sessions := repository.NewSessionRepository(dbPool)
	images := repository.NewImageRepository(dbPool)

	quota := service.NewQuotaGate(images, cfg.Gallery.MaxImagesPerUser)
	gallery := service.NewGalleryService(images, artifacts, quota, logger)
	generator := service.NewGenerationService(
		prompt.NewSanitizer(cfg.Gallery.PromptMinLength, cfg.Gallery.PromptMaxLength),
		quota,
		generation.NewClient(cfg.Generation, logger),
		artifacts,
		images,
		cfg.Generation,
		logger,
	)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Services{
		Auth:        service.NewAuthService(users, sessions, cfg.Security, logger),
		Generation:  generator,
		Gallery:     gallery,
		Inspiration: inspiration.NewClient(cfg.Inspiration, redisClient, logger),
		DB:          dbPool,
		Cache:       redisClient,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Worker, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("scheduler jobs still running at shutdown")
	}

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
