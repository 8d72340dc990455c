// Package server assembles the HTTP surface from constructed collaborators.
package server

import (
	"net/http"
	"time"

	"filesmanager/internal/blob"
	"filesmanager/internal/cache"
	"filesmanager/internal/database"
	"filesmanager/internal/middleware"
	"filesmanager/internal/modules/app"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/modules/files"
	"filesmanager/internal/pkg/response"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	DB    *gorm.DB
	Cache *cache.Redis
	Jobs  queue.Producer
	Blobs blob.Store
	Log   *zap.Logger

	SessionTTL     time.Duration
	EnqueueTimeout time.Duration
	// HashCost overrides the bcrypt cost; zero keeps the default.
	HashCost    int
	CORSOrigins []string
}

func NewRouter(opts Options) *gin.Engine {
	userRepo := repository.NewUserRepository(opts.DB)
	fileRepo := repository.NewFileRepository(opts.DB)

	authService := auth.NewService(userRepo, opts.Cache, opts.Jobs, opts.Log, auth.Options{
		SessionTTL:     opts.SessionTTL,
		EnqueueTimeout: opts.EnqueueTimeout,
		HashCost:       opts.HashCost,
	})
	authHandler := auth.NewHandler(authService)

	filesService := files.NewService(fileRepo, opts.Blobs, opts.Jobs, opts.Log, opts.EnqueueTimeout)
	filesHandler := files.NewHandler(filesService)

	appService := app.NewService(opts.Cache, database.NewPinger(opts.DB), userRepo, fileRepo)
	appHandler := app.NewHandler(appService)

	r := gin.New()
	r.Use(
		middleware.Recovery(opts.Log),
		middleware.RequestLogger(opts.Log),
		middleware.CORS(opts.CORSOrigins),
	)

	appHandler.RegisterRoutes(r)
	authHandler.RegisterPublicRoutes(r)

	protected := r.Group("/")
	protected.Use(middleware.RequireSession(authService))
	{
		authHandler.RegisterProtectedRoutes(protected)
		filesHandler.RegisterProtectedRoutes(protected)
	}

	optional := r.Group("/")
	optional.Use(middleware.OptionalSession(authService))
	{
		filesHandler.RegisterOptionalRoutes(optional)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	})
	return r
}
