// Command api serves the files manager HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"filesmanager/internal/cache"
	"filesmanager/internal/config"
	"filesmanager/internal/database"
	"filesmanager/internal/logger"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository"
	"filesmanager/internal/server"
	"filesmanager/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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

	zl, err := logger.New(cfg.IsProdLike())
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

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

	rc := cache.NewRedis(server.CacheOptions(cfg))
	defer func() { _ = rc.Close() }()
	if !rc.IsAlive(ctx) {
		zl.Warn("redis is not reachable; sessions will fail until it is", zap.String("addr", cfg.RedisAddr))
	}

	blobs, err := server.OpenBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	var jobs queue.Producer
	consumerDone := make(chan struct{})
	switch cfg.QueueBackend {
	case config.QueueBackendMemory:
		mem := queue.NewMemory(zl.Named("queue"), 1024, cfg.WorkerConcurrency)
		worker.Register(mem,
			worker.NewThumbnailProcessor(repository.NewFileRepository(db), blobs, zl.Named("thumbnail")),
			worker.NewWelcomeProcessor(repository.NewUserRepository(db), zl.Named("welcome")),
		)
		go func() {
			_ = mem.Run(ctx)
			close(consumerDone)
		}()
		jobs = mem
	default:
		producer := queue.NewAsynqProducer(server.QueueOptions(cfg))
		defer func() { _ = producer.Close() }()
		jobs = producer
		close(consumerDone)
	}

	router := server.NewRouter(server.Options{
		DB:             db,
		Cache:          rc,
		Jobs:           jobs,
		Blobs:          blobs,
		Log:            zl,
		SessionTTL:     cfg.SessionTTL,
		EnqueueTimeout: cfg.EnqueueTimeout,
		CORSOrigins:    cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	<-consumerDone

	zl.Info("shutdown complete")
	return nil
}
