package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/mente-aberta-api/internal/api/http"
	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/observability"
	"github.com/spec-kit/mente-aberta-api/internal/persistence"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	"github.com/spec-kit/mente-aberta-api/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	if cfg.Invite.UsageCap > 0 {
		logger.Warn("global invite usage cap enabled; codes stop at min(max_uses, cap)",
			zap.Int("usage_cap", cfg.Invite.UsageCap))
	}

	repos := repository.NewRepositories(pg.PoolHandle())
	server := httptransport.NewServer(httptransport.ServerOptions{
		Config:       cfg,
		Logger:       logger,
		Postgres:     pg,
		Redis:        redis,
		Cache:        persistence.NewCache(redis),
		Repositories: repos,
		Registerer:   prometheus.DefaultRegisterer,
	})

	notifier := worker.StartNotificationWorker(ctx, server.Dispatcher, server.Notifications, logger)

	housekeeping, err := worker.StartHousekeeping(cfg.Housekeeping,
		worker.NewHousekeeper(repos.InviteCodes, repos.PasswordResets, logger), logger)
	if err != nil {
		logger.Fatal("failed to schedule housekeeping", zap.Error(err))
	}

	go func() {
		if err := server.App.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if housekeeping != nil {
		<-housekeeping.Stop().Done()
	}
	_ = server.App.Shutdown()
	cancel()
	<-notifier.Done()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
