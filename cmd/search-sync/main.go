package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/circuitbreaker"
	"github.com/opencollective/ledger/internal/pkg/config"
	"github.com/opencollective/ledger/internal/pkg/database"
	"github.com/opencollective/ledger/internal/pkg/health"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/middleware"
	"github.com/opencollective/ledger/internal/pkg/nats"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/internal/pkg/nsq"
	"github.com/opencollective/ledger/internal/pkg/retry"
	"github.com/opencollective/ledger/internal/pkg/server"
	"github.com/opencollective/ledger/services/searchsync/adapter"
	"github.com/opencollective/ledger/services/searchsync/gateway"
	"github.com/opencollective/ledger/services/searchsync/handler"
	"github.com/opencollective/ledger/services/searchsync/handler/listener"
	natshandler "github.com/opencollective/ledger/services/searchsync/handler/nats"
	nsqhandler "github.com/opencollective/ledger/services/searchsync/handler/nsq"
	"github.com/opencollective/ledger/services/searchsync/repository"
	"github.com/opencollective/ledger/services/searchsync/usecase"
)

func main() {
	appName := "search-sync-service"
	configPath := "config/search-sync.env"
	configs := config.InitConfig(configPath)

	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()

	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
		logger.String("search_url", configs.Search.URL),
	)

	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	natsClient, err := nats.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS with JetStream", logger.Err(err))
	}

	// LISTEN needs its own connection outside the pool
	pgListener, err := database.NewListener(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to open PostgreSQL listener connection", logger.Err(err))
	}

	nsqProducer, err := nsq.NewProducer(configs.NSQ.Address)
	if err != nil {
		zapLogger.Fatal("Failed to create NSQ producer", logger.Err(err))
	}

	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig("search"), zapLogger)
	indexerGW, err := gateway.NewIndexerGW(configs.Search, breaker, retry.NewWithDefaults(zapLogger))
	if err != nil {
		zapLogger.Fatal("Failed to create search client", logger.Err(err))
	}

	registry := adapter.NewRegistry(configs.Search.IndexPrefix)
	searchRepo := repository.NewSearchRepository(postgresClient.GetDB())
	retryGW := gateway.NewRetryGW(nsqProducer)
	searchUC := usecase.NewSearchSyncUC(configs, registry, searchRepo, indexerGW, retryGW, nrApp)

	searchUC.Start()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := natsClient.EnsureStreams(initCtx, nats.LedgerStreamConfig()); err != nil {
		zapLogger.Fatal("Failed to ensure ledger stream", logger.Err(err))
	}
	if err := searchUC.EnsureIndices(initCtx); err != nil {
		// the indices are created again on reindex, so keep serving
		zapLogger.Error("Failed to ensure search indices", logger.Err(err))
	}
	cancelInit()

	listenCtx, stopListening := context.WithCancel(context.Background())
	listenerDone := make(chan struct{})
	notificationListener := listener.NewListener(pgListener, searchUC)
	go func() {
		defer close(listenerDone)
		_ = notificationListener.Run(listenCtx)
	}()

	retryHandler := nsqhandler.NewRetryHandler(searchUC, configs, nrApp)
	if err := retryHandler.Start(); err != nil {
		zapLogger.Fatal("Failed to start NSQ retry consumer", logger.Err(err))
	}

	ledgerEventHandler := natshandler.NewLedgerEventHandler(searchUC, natsClient, nrApp)
	if err := ledgerEventHandler.InitNATSConsumers(listenCtx); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(nrpkg.Middleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(&configs.APIKeys)

	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", health.NewPostgresHealthChecker(postgresClient))
	healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	healthService.AddChecker("nsq", health.CheckerFunc(func(context.Context) error {
		return nsqProducer.Ping()
	}))
	healthService.AddChecker("search", health.CheckerFunc(indexerGW.Ping))
	healthService.AddChecker("listener", health.CheckerFunc(pgListener.Ping))
	health.RegisterEnhancedHealthEndpoints(e, appName, configs.App.Version, healthService)

	searchHandler := handler.NewHandler(searchUC, configs, redisClient.GetClient())
	searchHandler.RegisterRoutes(e, apiKeyMiddleware)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port, time.Duration(configs.Server.ShutdownTimeout)*time.Second)

	// Registered bottom-up: the last registered component stops first.
	// Inputs stop, then the queue drains, then the connections close.
	components := srv.Components()
	components.Register("new relic", func(context.Context) error {
		if nrApp != nil {
			nrApp.Shutdown(10 * time.Second)
		}
		return nil
	})
	components.Register("postgres", func(context.Context) error {
		return postgresClient.Close()
	})
	components.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})
	components.Register("nats", func(context.Context) error {
		natsClient.Close()
		return nil
	})
	components.Register("nsq producer", func(context.Context) error {
		nsqProducer.Stop()
		return nil
	})
	components.Register("search sync processor", searchUC.FlushAndClose)
	components.Register("nsq retry consumer", func(context.Context) error {
		retryHandler.Stop()
		return nil
	})
	components.Register("nats consumers", func(context.Context) error {
		natsClient.StopConsumers()
		return nil
	})
	components.Register("postgres listener", func(ctx context.Context) error {
		stopListening()
		select {
		case <-listenerDone:
		case <-ctx.Done():
			return ctx.Err()
		}
		pgListener.Close()
		return nil
	})

	if err := srv.Start(); err != nil {
		zapLogger.Error("Server stopped with errors", logger.Err(err))
	}

	zapLogger.Info("Server exiting gracefully")
	_ = zapLogger.Sync()
}
