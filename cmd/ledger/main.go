package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/config"
	"github.com/opencollective/ledger/internal/pkg/database"
	"github.com/opencollective/ledger/internal/pkg/health"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/middleware"
	"github.com/opencollective/ledger/internal/pkg/nats"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/internal/pkg/server"
	"github.com/opencollective/ledger/services/ledger/gateway"
	"github.com/opencollective/ledger/services/ledger/handler"
	"github.com/opencollective/ledger/services/ledger/repository"
	"github.com/opencollective/ledger/services/ledger/usecase"
)

func main() {
	appName := "ledger-service"
	configPath := "config/ledger.env"
	configs := config.InitConfig(configPath)

	// Initialize New Relic and Zap logger
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

	// The ledger stream must exist before the first event is published
	streamCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := natsClient.EnsureStreams(streamCtx, nats.LedgerStreamConfig()); err != nil {
		zapLogger.Fatal("Failed to ensure ledger stream", logger.Err(err))
	}
	cancel()

	ledgerRepo := repository.NewLedgerRepository(configs, postgresClient.GetDB(), redisClient)
	ledgerGW := gateway.NewLedgerGW(natsClient)
	ledgerUC := usecase.NewLedgerUC(configs, ledgerRepo, ledgerGW)

	ledgerHandler := handler.NewHandler(ledgerUC, configs, nrApp)

	e := echo.New()
	e.HideBanner = true

	// panic recovery first
	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(nrpkg.Middleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(&configs.APIKeys)

	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", health.NewPostgresHealthChecker(postgresClient))
	healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	health.RegisterEnhancedHealthEndpoints(e, appName, configs.App.Version, healthService)

	ledgerHandler.RegisterRoutes(e, apiKeyMiddleware)

	if err := ledgerHandler.StartCron(); err != nil {
		zapLogger.Fatal("Failed to start settlement cron", logger.Err(err))
	}

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port, time.Duration(configs.Server.ShutdownTimeout)*time.Second)

	// Components stop in reverse order: cron first, connections last
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
	components.Register("settlement cron", func(context.Context) error {
		ledgerHandler.StopCron()
		return nil
	})

	if err := srv.Start(); err != nil {
		zapLogger.Error("Server stopped with errors", logger.Err(err))
	}

	zapLogger.Info("Server exiting gracefully")
	_ = zapLogger.Sync()
}
