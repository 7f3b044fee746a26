package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/survey-auth/internal/api/http"
	"github.com/spec-kit/survey-auth/internal/api/http/handlers"
	"github.com/spec-kit/survey-auth/internal/auth"
	"github.com/spec-kit/survey-auth/internal/config"
	"github.com/spec-kit/survey-auth/internal/events"
	"github.com/spec-kit/survey-auth/internal/observability"
	"github.com/spec-kit/survey-auth/internal/persistence"
	"github.com/spec-kit/survey-auth/internal/ratelimit"
	"github.com/spec-kit/survey-auth/internal/repository"
	"github.com/spec-kit/survey-auth/internal/service"
	"github.com/spec-kit/survey-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	keys, err := auth.NewKeyring(cfg.Auth.JWTSecret, cfg.Auth.JWTJudgeSecret)
	if err != nil {
		logger.Fatal("failed to init token keyring", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	limiter := ratelimit.New(redis.Universal(), ratelimit.Config{
		MaxLoginAttempts:      cfg.Auth.MaxLoginAttempts,
		MaxIPAttempts:         cfg.Auth.MaxIPLoginAttempts,
		LoginCooldownDuration: cfg.Auth.LoginCooldown(),
		EnableIPThrottle:      cfg.Auth.LoginThrottleIPAddresses,
		KeyPrefix:             cfg.App.Name,
	})

	sessions := service.NewSessionService(service.SessionDependencies{
		UserRepo:     repository.NewUserRepository(pg.PoolHandle()),
		Keys:         keys,
		Limiter:      limiter,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
		CookieSecure: cfg.Auth.CookieSecure,
		BcryptCost:   cfg.Auth.BcryptCost,
	})

	app := fiber.New(fiber.Config{
		AppName:                 cfg.App.Name,
		ProxyHeader:             cfg.App.ProxyHeader,
		EnableTrustedProxyCheck: len(cfg.App.TrustedProxies) > 0,
		TrustedProxies:          cfg.App.TrustedProxies,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:           handlers.NewAuthHandler(sessions),
		AuthMiddleware: auth.NewAuthMiddleware(keys, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
