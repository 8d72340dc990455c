// Command worker runs the thumbnail and welcome pipelines against the Redis
// job queue.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"filesmanager/internal/config"
	"filesmanager/internal/database"
	"filesmanager/internal/logger"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository"
	"filesmanager/internal/server"
	"filesmanager/internal/worker"

	"go.uber.org/zap"
)

var errIncompatibleQueue = errors.New("the worker process needs QUEUE_BACKEND=redis; the memory queue runs inside the api process")

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.QueueBackend != config.QueueBackendRedis {
		return errIncompatibleQueue
	}

	zl, err := logger.New(cfg.IsProdLike())
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db, repository.Models()...); err != nil {
		return err
	}

	blobs, err := server.OpenBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	consumer := queue.NewAsynqConsumer(server.QueueOptions(cfg), cfg.WorkerConcurrency, zl.Named("asynq"))
	worker.Register(consumer,
		worker.NewThumbnailProcessor(repository.NewFileRepository(db), blobs, zl.Named("thumbnail")),
		worker.NewWelcomeProcessor(repository.NewUserRepository(db), zl.Named("welcome")),
	)

	zl.Info("worker started", zap.Int("concurrency", cfg.WorkerConcurrency))
	if err := consumer.Run(ctx); err != nil {
		return err
	}
	zl.Info("worker stopped")
	return nil
}
