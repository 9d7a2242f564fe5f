package main

import (
	"fmt"
	"os"

	"github.com/opencollective/ledger/internal/pkg/circuitbreaker"
	"github.com/opencollective/ledger/internal/pkg/config"
	"github.com/opencollective/ledger/internal/pkg/database"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/pkg/nats"
	"github.com/opencollective/ledger/internal/pkg/nsq"
	"github.com/opencollective/ledger/internal/pkg/retry"
	"github.com/opencollective/ledger/services/ledger"
	ledgergw "github.com/opencollective/ledger/services/ledger/gateway"
	ledgerrepo "github.com/opencollective/ledger/services/ledger/repository"
	ledgeruc "github.com/opencollective/ledger/services/ledger/usecase"
	"github.com/opencollective/ledger/services/searchsync"
	"github.com/opencollective/ledger/services/searchsync/adapter"
	searchgw "github.com/opencollective/ledger/services/searchsync/gateway"
	searchrepo "github.com/opencollective/ledger/services/searchsync/repository"
	searchuc "github.com/opencollective/ledger/services/searchsync/usecase"
)

type rootOptions struct {
	configPath string
	output     string
	logLevel   string
	logFormat  string
}

// app holds the connections of one command run
type app struct {
	cfg    *models.Config
	log    *logger.CLILogger
	closer []func()
}

func newApp(opts *rootOptions) (*app, error) {
	if _, err := parseFormat(opts.output); err != nil {
		return nil, err
	}
	a := &app{
		cfg: config.InitConfig(opts.configPath),
		log: logger.NewCLILogger(os.Stderr, opts.logLevel, opts.logFormat),
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
}

func (a *app) postgres() (*database.PostgresClient, error) {
	pg, err := database.NewPostgresClient(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.closer = append(a.closer, func() { _ = pg.Close() })
	return pg, nil
}

func (a *app) ledgerUC() (ledger.LedgerUC, error) {
	pg, err := a.postgres()
	if err != nil {
		return nil, err
	}
	redisClient, err := database.NewRedisClient(a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.closer = append(a.closer, func() { _ = redisClient.Close() })

	natsClient, err := nats.NewClient(a.cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.closer = append(a.closer, natsClient.Close)

	repo := ledgerrepo.NewLedgerRepository(a.cfg, pg.GetDB(), redisClient)
	return ledgeruc.NewLedgerUC(a.cfg, repo, ledgergw.NewLedgerGW(natsClient)), nil
}

// searchUC builds a started batch processor. Callers drain it with FlushAndClose.
func (a *app) searchUC() (searchsync.SearchSyncUC, error) {
	pg, err := a.postgres()
	if err != nil {
		return nil, err
	}

	producer, err := nsq.NewProducer(a.cfg.NSQ.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ producer: %w", err)
	}
	a.closer = append(a.closer, producer.Stop)

	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig("search"), nil)
	indexerGW, err := searchgw.NewIndexerGW(a.cfg.Search, breaker, retry.NewWithDefaults(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	uc := searchuc.NewSearchSyncUC(
		a.cfg,
		adapter.NewRegistry(a.cfg.Search.IndexPrefix),
		searchrepo.NewSearchRepository(pg.GetDB()),
		indexerGW,
		searchgw.NewRetryGW(producer),
		nil,
	)
	uc.Start()
	return uc, nil
}
