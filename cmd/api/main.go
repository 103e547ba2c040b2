// @title                       tubehub API
// @version                     1.0
// @description                 Accounts, channels and session lifecycle for the tubehub video platform.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tubehub/api/internal/api"
	"github.com/tubehub/api/internal/api/handler"
	"github.com/tubehub/api/internal/core/service"
	"github.com/tubehub/api/internal/infrastructure/db/mongo"
	"github.com/tubehub/api/internal/infrastructure/db/redis"
	"github.com/tubehub/api/internal/infrastructure/queue"
	"github.com/tubehub/api/internal/pkg/config"
	"github.com/tubehub/api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "tubehub-api",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	users := mongo.NewUserRepository(db)
	videos := mongo.NewVideoRepository(db)
	auditRepo := mongo.NewAuditRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, videos, auditRepo); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes failed")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, logger.Component("audit"))
	dispatcher.Start(workerCtx)

	tokens := service.NewTokenIssuer(users, service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL.Std(),
		RefreshTTL:    cfg.Auth.RefreshTTL.Std(),
	})
	authService := service.NewAuthService(users, tokens, service.AuthOptions{
		UnifyLoginErrors: cfg.Auth.UnifyLoginErrors,
		Throttle:         redis.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockoutWindow.Std()),
		Audit:            dispatcher,
	}, logger.Component("auth"))
	accountService := service.NewAccountService(users, logger.Component("account"))
	videoService := service.NewVideoService(videos, users, logger.Component("video"))

	e := api.NewRouter(api.Deps{
		Log:        log,
		Production: cfg.IsProduction(),
		CORSOrigin: cfg.CORSOrigin,
		Auth:       authService,
		Accounts:   accountService,
		Videos:     videoService,
		Verifier:   tokens,
		Users:      users,
		Readiness: map[string]handler.PingFunc{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return redis.Ping(ctx, rdb, 0) },
		},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("goodbye")
}
