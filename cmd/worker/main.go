package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"paintsnap/internal/cache"
	"paintsnap/internal/config"
	"paintsnap/internal/database"
	"paintsnap/internal/log"
	"paintsnap/internal/prediction"
	"paintsnap/internal/queue"
	"paintsnap/internal/repository"
	"paintsnap/internal/service"
	"paintsnap/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(dbPool)
	transformRepo := repository.NewTransformationRepository(dbPool)
	predictor := prediction.NewClient(cfg.Provider, logger)
	publisher := queue.NewPublisher(redisClient, cfg.Queue.Stream)

	transforms := service.NewTransformationService(transformRepo, userRepo, predictor, publisher, logger)
	processor := tasks.NewProcessor(transforms, cfg.Queue, logger)
	consumer := queue.NewConsumer(
		redisClient,
		cfg.Queue.Stream,
		cfg.Queue.Group,
		cfg.Queue.Consumer,
		cfg.Queue.ClaimInterval,
		logger,
		processor,
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Start(runCtx); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-runCtx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
