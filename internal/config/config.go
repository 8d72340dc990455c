package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr          = ":5000"
	defaultDatabaseURL       = "files_manager.db"
	defaultRedisAddr         = "localhost:6379"
	defaultRedisDB           = "0"
	defaultSessionTTL        = "24h"
	defaultFolderPath        = "/tmp/files_manager"
	defaultBlobBackend       = BlobBackendLocal
	defaultS3Region          = "us-east-1"
	defaultS3Prefix          = "files"
	defaultQueueBackend      = QueueBackendRedis
	defaultWorkerConcurrency = "1"
	defaultEnqueueTimeout    = "2s"
	defaultShutdownTimeout   = "10s"
)

const (
	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"

	QueueBackendRedis  = "redis"
	QueueBackendMemory = "memory"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL time.Duration

	BlobBackend string
	FolderPath  string
	S3          S3Config

	QueueBackend      string
	WorkerConcurrency int
	EnqueueTimeout    time.Duration

	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", defaultRedisAddr))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.FolderPath = strings.TrimSpace(getEnv("FOLDER_PATH", defaultFolderPath))
	cfg.BlobBackend = strings.ToLower(strings.TrimSpace(getEnv("BLOB_BACKEND", defaultBlobBackend)))
	cfg.QueueBackend = strings.ToLower(strings.TrimSpace(getEnv("QUEUE_BACKEND", defaultQueueBackend)))

	cfg.S3 = S3Config{
		Bucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
		Region:    strings.TrimSpace(getEnv("S3_REGION", defaultS3Region)),
		Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		Prefix:    strings.Trim(strings.TrimSpace(getEnv("S3_PREFIX", defaultS3Prefix)), "/"),
	}

	var err error
	cfg.RedisDB, err = parseIntEnv("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, err
	}

	cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}

	cfg.WorkerConcurrency, err = parseIntEnv("WORKER_CONCURRENCY", defaultWorkerConcurrency)
	if err != nil {
		return nil, err
	}

	cfg.EnqueueTimeout, err = parseDurationEnv("ENQUEUE_TIMEOUT", defaultEnqueueTimeout)
	if err != nil {
		return nil, err
	}

	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.EnqueueTimeout <= 0 {
		return fmt.Errorf("ENQUEUE_TIMEOUT must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be >= 1")
	}

	switch cfg.BlobBackend {
	case BlobBackendLocal:
		if cfg.FolderPath == "" {
			return fmt.Errorf("FOLDER_PATH must not be empty")
		}
	case BlobBackendS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be one of: local, s3")
	}

	switch cfg.QueueBackend {
	case QueueBackendRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR must not be empty")
		}
	case QueueBackendMemory:
		if isProdLike(cfg.AppEnv) {
			return fmt.Errorf("in prod/release QUEUE_BACKEND must be redis")
		}
	default:
		return fmt.Errorf("QUEUE_BACKEND must be one of: redis, memory")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
