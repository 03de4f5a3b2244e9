// @title        User Portal API
// @version      1.0
// @description  User management service: registration, session login and
// @description  admin-side user lifecycle with avatar uploads.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/userdesk/user-portal/internal/api"
	"github.com/userdesk/user-portal/internal/core/service"
	mongodb "github.com/userdesk/user-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/userdesk/user-portal/internal/infrastructure/db/redis"
	"github.com/userdesk/user-portal/internal/infrastructure/session"
	"github.com/userdesk/user-portal/internal/infrastructure/storage"
	"github.com/userdesk/user-portal/internal/pkg/config"
	"github.com/userdesk/user-portal/pkg/logger"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	backend, err := newStorageBackend(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("storage backend init failed")
	}
	if err := backend.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("storage bucket init failed")
	}

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index init failed")
	}

	codec := session.NewTokenCodec(cfg.SessionSecret, cfg.SessionTTL)
	sessions := redisdb.NewSessionStore(rdb, codec)
	avatars := storage.NewAvatarStore(backend)

	authService := service.NewAuthService(userRepo, avatars, sessions, logger.Component("auth"))
	userService := service.NewUserService(userRepo, avatars, logger.Component("users"))

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		UserService: userService,
		Sessions:    sessions,
		Avatars:     avatars,
		Mongo:       db,
		Redis:       rdb,
		CookieTTL:   int(codec.TTL().Seconds()),
		Logger:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage.Backend).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newStorageBackend(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return storage.NewDiskStorage(cfg.UploadDir), nil
	}
}
