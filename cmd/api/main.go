// @title                       eCommerce Platform API
// @version                     1.0
// @description                 Accounts, sessions and the store catalogue of the eCommerce platform.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/api"
	"github.com/storefront/ecommerce-api/internal/core/auth"
	"github.com/storefront/ecommerce-api/internal/core/ports"
	"github.com/storefront/ecommerce-api/internal/core/service"
	mongodb "github.com/storefront/ecommerce-api/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/ecommerce-api/internal/infrastructure/db/redis"
	httpserver "github.com/storefront/ecommerce-api/internal/infrastructure/http"
	"github.com/storefront/ecommerce-api/internal/infrastructure/http/handlers"
	"github.com/storefront/ecommerce-api/internal/infrastructure/queue"
	"github.com/storefront/ecommerce-api/internal/infrastructure/storage"
	"github.com/storefront/ecommerce-api/internal/pkg/config"
	"github.com/storefront/ecommerce-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ecommerce-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the real environment still applies.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "ecommerce-api",
	})

	// --- Storage backends ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		AppName:        cfg.Mongo.AppName,
		MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	users, stores, err := mongodb.Setup(ctx, db)
	if err != nil {
		return err
	}

	images, uploadDir, err := newImageStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	// Cleanup workers outlive the HTTP server so deletions queued by the
	// last requests still run.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	cleaner := queue.NewDispatcher(cfg.Storage.CleanupWorkers, images, logger.Component("cleanup"))
	cleaner.Start(workerCtx)
	defer func() {
		stopWorkers()
		cleaner.Wait()
	}()

	// --- Core ---
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	gate := auth.NewSessionGate(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.WithIssuer(cfg.Auth.Issuer))

	authSvc := service.NewAuthService(users, hasher, gate, logger.Component("auth"),
		service.WithLoginThrottle(redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)),
		service.WithImages(images, cleaner),
		service.WithPasswordMinLength(cfg.Auth.PasswordMinLength),
	)
	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Auth:   authSvc,
		Users:  service.NewUserService(users, cleaner, logger.Component("users")),
		Stores: service.NewStoreService(stores, images, cleaner, logger.Component("stores")),
		Gate:   gate,
		Checks: []handlers.Checker{handlers.MongoChecker(db), handlers.RedisChecker(rdb)},
		Log:    logger.Component("http"),
		Opts: api.Options{
			LegacyAuthHeader: cfg.Auth.LegacyHeader,
			AllowedOrigins:   cfg.HTTP.AllowedOrigins,
			RateLimitRPS:     cfg.HTTP.RateLimitRPS,
			RateLimitBurst:   cfg.HTTP.RateLimitBurst,
			MaxImageBytes:    cfg.Storage.MaxImageBytes,
			UploadDir:        uploadDir,
		},
	})

	logStartup(log, cfg)
	return httpserver.NewServer(e, ":"+cfg.Port, logger.Component("http")).Run(ctx)
}

// newImageStore returns the configured image store and, for the local
// driver, the directory to serve under /uploads.
func newImageStore(ctx context.Context, cfg config.StorageConfig) (ports.ImageStore, string, error) {
	if cfg.Driver == "s3" {
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		return s, "", err
	}
	s, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}

func logStartup(log zerolog.Logger, cfg *config.Config) {
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("storage", cfg.Storage.Driver).
		Dur("token_ttl", cfg.Auth.TokenTTL).
		Bool("legacy_auth_header", cfg.Auth.LegacyHeader).
		Bool("admin_bootstrap", cfg.Admin.Email != "").
		Msg("starting ecommerce api")
}
