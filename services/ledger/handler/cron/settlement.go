package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/ledger"
	"github.com/robfig/cron/v3"
)

// DefaultSettlementSchedule runs at 00:10 UTC on the first day of every month
const DefaultSettlementSchedule = "10 0 1 * *"

// SettlementJob invoices the hosts' owed debts on a cron schedule
type SettlementJob struct {
	ledgerUC ledger.LedgerUC
	nrApp    *newrelic.Application
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

// NewSettlementJob creates the monthly settlement job
func NewSettlementJob(ledgerUC ledger.LedgerUC, cfg *models.Config, nrApp *newrelic.Application) *SettlementJob {
	schedule := cfg.Ledger.SettlementCron
	if schedule == "" {
		schedule = DefaultSettlementSchedule
	}
	return &SettlementJob{
		ledgerUC: ledgerUC,
		nrApp:    nrApp,
		schedule: schedule,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		now:      time.Now,
	}
}

// Start registers the job and starts the scheduler
func (j *SettlementJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return fmt.Errorf("invalid settlement schedule %q: %w", j.schedule, err)
	}
	j.cron.Start()

	logger.Info("Settlement cron started", logger.String("schedule", j.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (j *SettlementJob) Stop() {
	<-j.cron.Stop().Done()
	logger.Info("Settlement cron stopped")
}

// Run invoices every host once. Another instance holding the lock is not an error.
func (j *SettlementJob) Run(ctx context.Context) {
	ctx, end := nrpkg.StartBackgroundTransaction(ctx, j.nrApp, "Ledger.MonthlySettlement")

	start := j.now()
	invoices, err := j.ledgerUC.RunMonthlySettlement(ctx, start)
	switch {
	case errors.Is(err, models.ErrLockNotAcquired):
		logger.InfoCtx(ctx, "Monthly settlement already running elsewhere")
		end(nil)
		return
	case err != nil:
		logger.ErrorCtx(ctx, "Monthly settlement failed", logger.Err(err))
		end(err)
		return
	}

	totals := map[string]int64{}
	for _, inv := range invoices {
		for currency, amount := range inv.Totals {
			totals[currency] += amount
		}
	}
	logger.InfoCtx(ctx, "Monthly settlement completed",
		logger.Int("invoices", len(invoices)),
		logger.Any("totals", totals),
		logger.Duration("duration", time.Since(start)))
	end(nil)
}
