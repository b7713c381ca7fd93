package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/gas-utility-service/internal/api/http"
	"github.com/spec-kit/gas-utility-service/internal/api/http/handlers"
	"github.com/spec-kit/gas-utility-service/internal/auth"
	"github.com/spec-kit/gas-utility-service/internal/events"
	"github.com/spec-kit/gas-utility-service/internal/observability"
	"github.com/spec-kit/gas-utility-service/internal/persistence"
	"github.com/spec-kit/gas-utility-service/internal/repository"
	"github.com/spec-kit/gas-utility-service/internal/service"
	"github.com/spec-kit/gas-utility-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pg, err := openPostgres(ctx, cfg, logger, cfg.Postgres.RunMigrations)
	if err != nil {
		return err
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		metrics.RegisterPoolStats(cfg.Metrics.Namespace, pg.Stats)
	}

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	requestRepo := repository.NewServiceRequestRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	sessions := auth.NewSessionManager(tokens, auth.NewRedisSessionStore(redis.Client, redis.KeyPrefix))

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	accountService := service.NewAccountService(*cfg, service.AccountDependencies{
		AccountRepo: accountRepo,
		Sessions:    sessions,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	app := httptransport.NewApp(cfg.App.Name, logger, metrics)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Accounts:       handlers.NewAccountsHandler(accountService),
		AdminAccounts:  handlers.NewAdminAccountsHandler(accountService),
		Requests:       handlers.NewRequestsHandler(requestService),
		AdminRequests:  handlers.NewAdminRequestsHandler(requestService),
		AuthMiddleware: auth.NewAuthMiddleware(sessions, accountRepo, logger),
		Metrics:        metrics,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			return err
		}
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}
