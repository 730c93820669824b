package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-import/backend/config"
	"github.com/pageza/alchemorsel-import/backend/internal/api"
	"github.com/pageza/alchemorsel-import/backend/internal/database"
	"github.com/pageza/alchemorsel-import/backend/internal/logging"
	"github.com/pageza/alchemorsel-import/backend/internal/middleware"
	"github.com/pageza/alchemorsel-import/backend/internal/router"
	"github.com/pageza/alchemorsel-import/backend/internal/server"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
	"github.com/pageza/alchemorsel-import/backend/internal/storage"
)

func main() {
	bootLog := logging.New("info", config.IsProduction())

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog.WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.Environment == config.Production)
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	log.WithField("config", cfg.String()).Debug("Configuration loaded")

	ctx := context.Background()
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure object storage")
	}
	store := storage.NewS3Store(s3cfg, cfg.S3URLMode == config.URLModePresigned, cfg.S3PresignTTL)

	checks := map[string]api.HealthCheck{}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		if err := database.RunMigrations(db); err != nil {
			log.WithError(err).Fatal("Failed to run migrations")
		}
		checks["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, db) }
	}

	srv := server.New(cfg, router.SetupRouter(buildDependencies(cfg, log, store, redisClient, db, checks)), log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.WithError(err).Fatal("Server error")
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received signal")
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}
	log.Info("Server stopped")
}

func buildDependencies(cfg *config.Config, log *logrus.Logger, store service.ObjectStore, redisClient *redis.Client, db *gorm.DB, checks map[string]api.HealthCheck) router.Dependencies {
	deps := router.Dependencies{
		APIKey:       cfg.APIKey,
		CORSOrigins:  cfg.CORSOrigins,
		Log:          log,
		Tokens:       service.NewAuthService(cfg.TokenSecret, cfg.TokenIssuer),
		HealthChecks: checks,
	}

	var cache *service.ImportCache
	if redisClient != nil {
		cache = service.NewImportCache(redisClient, cfg.CacheTTL)
		deps.RateLimiter = middleware.NewImportRateLimiter(redisClient, cfg.RateLimitPerHour, log)
	}

	var ledger service.IUploadLedger
	if db != nil {
		ledger = service.NewUploadLedger(db)
		deps.Ledger = ledger
	}

	deps.Importer = service.NewRecipeImporter(
		service.NewLLMService(cfg, log),
		service.NewPageFetcher(cfg.FetchTimeout, cfg.MaxPageText, cfg.FetchAllowPrivate, log),
		cache,
		cfg.LLMTemperature,
		cfg.MaxTextLength,
		log,
	)
	deps.Images = service.NewImageService(store, ledger, cfg.MaxImageBytes, log)
	return deps
}
