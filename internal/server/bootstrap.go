package server

import (
	"context"
	"fmt"

	"filesmanager/internal/blob"
	"filesmanager/internal/cache"
	"filesmanager/internal/config"
	"filesmanager/internal/queue"
)

// OpenBlobStore builds the configured blob backend.
func OpenBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return blob.NewS3(ctx, blob.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	case config.BlobBackendLocal:
		return blob.NewLocal(cfg.FolderPath)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

func CacheOptions(cfg *config.Config) cache.Options {
	return cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

func QueueOptions(cfg *config.Config) queue.RedisOptions {
	return queue.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}
