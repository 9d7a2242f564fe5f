package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/ledger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type ledgerUC struct {
	cfg  *models.Config
	repo ledger.LedgerRepo
	gw   ledger.LedgerGW
	now  func() time.Time
}

// NewLedgerUC creates a new ledger use case
func NewLedgerUC(
	cfg *models.Config,
	repo ledger.LedgerRepo,
	gw ledger.LedgerGW,
) ledger.LedgerUC {
	return &ledgerUC{
		cfg:  cfg,
		repo: repo,
		gw:   gw,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ledgerUC) settings() ledgerSettings {
	return ledgerSettings{
		platformID:  uc.cfg.Ledger.PlatformCollectiveID,
		processorID: uc.cfg.Ledger.PaymentProcessorCollectiveID,
	}
}

func (uc *ledgerUC) lockTTL() time.Duration {
	if uc.cfg.Ledger.GroupLockTTL <= 0 {
		return 30 * time.Second
	}
	return time.Duration(uc.cfg.Ledger.GroupLockTTL) * time.Second
}

// withLock runs fn while holding the Redis lock key
func (uc *ledgerUC) withLock(ctx context.Context, key string, fn func() error) error {
	token := uuid.NewString()
	ok, err := uc.repo.AcquireLock(ctx, key, token, uc.lockTTL())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrLockNotAcquired, key)
	}
	defer func() {
		// release even when ctx was cancelled mid-operation
		if err := uc.repo.ReleaseLock(context.Background(), key, token); err != nil {
			logger.WarnCtx(ctx, "Failed to release lock", logger.String("key", key), logger.Err(err))
		}
	}()
	return fn()
}

// apply persists plan and drops the cached balances it affects
func (uc *ledgerUC) apply(ctx context.Context, plan *models.LedgerPlan) error {
	if err := uc.repo.ApplyPlan(ctx, plan); err != nil {
		return err
	}
	if err := uc.repo.InvalidateBalances(ctx, plan.CollectiveIDs()...); err != nil {
		logger.WarnCtx(ctx, "Failed to invalidate cached balances", logger.Err(err))
	}
	return nil
}

func ledgerEvent(group uuid.UUID, rows []*models.Transaction, at time.Time) *models.LedgerEvent {
	event := &models.LedgerEvent{TransactionGroup: group, OccurredAt: at}
	kinds := make(map[models.TransactionKind]bool)
	collectives := make(map[int64]bool)
	for _, t := range rows {
		event.TransactionIDs = append(event.TransactionIDs, t.ID)
		if !kinds[t.Kind] {
			kinds[t.Kind] = true
			event.Kinds = append(event.Kinds, t.Kind)
		}
		if !collectives[t.CollectiveID] {
			collectives[t.CollectiveID] = true
			event.CollectiveIDs = append(event.CollectiveIDs, t.CollectiveID)
		}
	}
	return event
}

// publish failures never undo a committed plan
func (uc *ledgerUC) publishRecorded(ctx context.Context, event *models.LedgerEvent) {
	if err := uc.gw.PublishTransactionsRecorded(ctx, event); err != nil {
		logger.ErrorCtx(ctx, "Failed to publish transactions recorded event",
			logger.String("transaction_group", event.TransactionGroup.String()),
			logger.Err(err))
	}
}

// RecordContribution records a settled contribution with its tip and fees
func (uc *ledgerUC) RecordContribution(ctx context.Context, input *models.ContributionInput) ([]*models.Transaction, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "LedgerUC.RecordContribution", func(ctx context.Context) ([]*models.Transaction, error) {
		now := uc.now()
		plan, err := planContribution(uc.settings(), input, now)
		if err != nil {
			return nil, err
		}
		if err := uc.apply(ctx, plan); err != nil {
			return nil, fmt.Errorf("failed to record contribution: %w", err)
		}

		group := plan.Inserts[0].TransactionGroup
		logger.InfoCtx(ctx, "Contribution recorded",
			logger.String("transaction_group", group.String()),
			logger.Int64("collective_id", input.CollectiveID),
			logger.Int64("amount", input.Amount),
			logger.String("currency", input.Currency),
			logger.Int("transactions", len(plan.Inserts)))

		uc.publishRecorded(ctx, ledgerEvent(group, plan.Inserts, now))
		return plan.Inserts, nil
	})
}

// RecordExpensePayment records a payout when the collective can afford it
func (uc *ledgerUC) RecordExpensePayment(ctx context.Context, input *models.ExpensePaymentInput) ([]*models.Transaction, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "LedgerUC.RecordExpensePayment", func(ctx context.Context) ([]*models.Transaction, error) {
		now := uc.now()
		plan, err := planExpensePayment(uc.settings(), input, now)
		if err != nil {
			return nil, err
		}

		key := fmt.Sprintf(constants.KeyCollectiveLock, input.CollectiveID)
		err = uc.withLock(ctx, key, func() error {
			balances, err := uc.repo.GetBalances(ctx, input.CollectiveID)
			if err != nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}
			var available int64
			for _, b := range balances {
				if b.Currency == input.Currency {
					available = b.Amount
				}
			}
			if required := input.Amount + input.PaymentProcessorFee; available < required {
				return fmt.Errorf("%w: %d %s available, %d required", models.ErrInsufficientBalance, available, input.Currency, required)
			}
			if err := uc.apply(ctx, plan); err != nil {
				return fmt.Errorf("failed to record expense payment: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		group := plan.Inserts[0].TransactionGroup
		logger.InfoCtx(ctx, "Expense payment recorded",
			logger.String("transaction_group", group.String()),
			logger.Int64("collective_id", input.CollectiveID),
			logger.Int64("payee_collective_id", input.PayeeCollectiveID),
			logger.Int64("amount", input.Amount))

		uc.publishRecorded(ctx, ledgerEvent(group, plan.Inserts, now))
		return plan.Inserts, nil
	})
}

func (uc *ledgerUC) settlementsByKind(ctx context.Context, group uuid.UUID) (map[models.TransactionKind]*models.SettlementDebt, error) {
	debts, err := uc.repo.ListSettlements(ctx, models.SettlementFilter{TransactionGroup: &group})
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	byKind := make(map[models.TransactionKind]*models.SettlementDebt, len(debts))
	for _, d := range debts {
		byKind[d.Kind] = d
	}
	return byKind, nil
}

// RefundTransactionGroup reverses a group into a new refund group
func (uc *ledgerUC) RefundTransactionGroup(ctx context.Context, group uuid.UUID, opts models.RefundOptions) ([]*models.Transaction, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "LedgerUC.RefundTransactionGroup", func(ctx context.Context) ([]*models.Transaction, error) {
		var (
			plan        *models.LedgerPlan
			refundGroup uuid.UUID
		)
		now := uc.now()

		err := uc.withLock(ctx, fmt.Sprintf(constants.KeyGroupLock, group), func() error {
			rows, err := uc.repo.GetTransactionGroup(ctx, group)
			if err != nil {
				return err
			}
			settlements, err := uc.settlementsByKind(ctx, group)
			if err != nil {
				return err
			}

			plan, refundGroup, err = planRefund(uc.settings(), rows, settlements, opts, now)
			if err != nil {
				return err
			}
			return uc.apply(ctx, plan)
		})
		if err != nil {
			return nil, err
		}

		refunds := refundRows(plan, refundGroup)
		logger.InfoCtx(ctx, "Transaction group refunded",
			logger.String("transaction_group", group.String()),
			logger.String("refund_group", refundGroup.String()),
			logger.Int("transactions", len(refunds)),
			logger.Int("split_updates", len(plan.Updates)))

		event := ledgerEvent(refundGroup, plan.Inserts, now)
		event.RefundedGroup = &group
		for _, t := range plan.Updates {
			event.TransactionIDs = append(event.TransactionIDs, t.ID)
		}
		if err := uc.gw.PublishTransactionsRefunded(ctx, event); err != nil {
			logger.ErrorCtx(ctx, "Failed to publish transactions refunded event",
				logger.String("refund_group", refundGroup.String()),
				logger.Err(err))
		}
		return refunds, nil
	})
}

// GetTransactionGroup returns the rows of a group
func (uc *ledgerUC) GetTransactionGroup(ctx context.Context, group uuid.UUID) ([]*models.Transaction, error) {
	rows, err := uc.repo.GetTransactionGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.ErrGroupNotFound
	}
	return rows, nil
}

// ListTransactions lists the rows of a collective, newest first
func (uc *ledgerUC) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	if filter.CollectiveID == 0 {
		return nil, invalid("collective is required")
	}
	for _, k := range filter.Kinds {
		if !k.Valid() {
			return nil, invalid("unknown kind %q", k)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.repo.ListTransactions(ctx, filter)
}

// GetBalance returns the per-currency balance of a collective, through the cache
func (uc *ledgerUC) GetBalance(ctx context.Context, collectiveID int64) ([]models.Balance, error) {
	cached, ok, err := uc.repo.GetCachedBalances(ctx, collectiveID)
	if err != nil {
		logger.WarnCtx(ctx, "Balance cache unavailable", logger.Int64("collective_id", collectiveID), logger.Err(err))
	}
	if ok {
		return cached, nil
	}

	balances, err := uc.repo.GetBalances(ctx, collectiveID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	ttl := time.Duration(uc.cfg.Ledger.BalanceCacheTTL) * time.Second
	if ttl > 0 {
		if err := uc.repo.CacheBalances(ctx, collectiveID, balances, ttl); err != nil {
			logger.WarnCtx(ctx, "Failed to cache balance", logger.Int64("collective_id", collectiveID), logger.Err(err))
		}
	}
	return balances, nil
}

// SplitLegacyFees splits legacy fee columns into their own pairs, group by group
func (uc *ledgerUC) SplitLegacyFees(ctx context.Context, filter models.SplitFilter) (*models.SplitReport, error) {
	groups, err := uc.repo.FindLegacyFeeGroups(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find legacy fee groups: %w", err)
	}

	report := &models.SplitReport{DryRun: filter.DryRun, ByKind: make(map[string]int64)}
	settings := uc.settings()

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.GroupsScanned++

		var (
			plan   *models.LedgerPlan
			byKind map[string]int64
		)
		err := uc.withLock(ctx, fmt.Sprintf(constants.KeyGroupLock, group), func() error {
			rows, err := uc.repo.GetTransactionGroup(ctx, group)
			if err != nil {
				return err
			}
			plan, byKind, err = planSplit(settings, rows)
			if err != nil || filter.DryRun {
				return err
			}
			return uc.apply(ctx, plan)
		})

		switch {
		case errors.Is(err, errNothingToSplit), errors.Is(err, errRefundedLegacyGroup):
			report.Skipped++
			continue
		case err != nil:
			logger.WarnCtx(ctx, "Failed to split legacy fees",
				logger.String("transaction_group", group.String()),
				logger.Err(err))
			report.Failed = append(report.Failed, fmt.Sprintf("%s: %v", group, err))
			continue
		}

		report.GroupsSplit++
		report.PairsCreated += len(plan.Inserts) / 2
		for kind, amount := range byKind {
			report.ByKind[kind] += amount
		}
		if !filter.DryRun {
			touched := make([]*models.Transaction, 0, len(plan.Updates)+len(plan.Inserts))
			touched = append(touched, plan.Updates...)
			uc.publishRecorded(ctx, ledgerEvent(group, append(touched, plan.Inserts...), uc.now()))
		}
	}

	logger.InfoCtx(ctx, "Legacy fee split finished",
		logger.Int("groups_scanned", report.GroupsScanned),
		logger.Int("groups_split", report.GroupsSplit),
		logger.Int("pairs_created", report.PairsCreated),
		logger.Int("failed", len(report.Failed)),
		logger.Bool("dry_run", report.DryRun))
	return report, nil
}

// CheckLedger verifies the ledger invariants over the selected groups
func (uc *ledgerUC) CheckLedger(ctx context.Context, filter models.CheckFilter) (*models.CheckReport, error) {
	groups, err := uc.repo.ListGroupsForCheck(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	report := &models.CheckReport{Violations: []models.Violation{}, CheckedAt: uc.now()}
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rows, err := uc.repo.GetTransactionGroup(ctx, group)
		if err != nil {
			return report, fmt.Errorf("failed to load group %s: %w", group, err)
		}

		linked := make(map[int64]*models.Transaction)
		if ids := externalRefundLinks(rows); len(ids) > 0 {
			targets, err := uc.repo.GetTransactionsByIDs(ctx, ids)
			if err != nil {
				return report, fmt.Errorf("failed to load refund links of %s: %w", group, err)
			}
			for _, t := range targets {
				linked[t.ID] = t
			}
		}

		settlements, err := uc.settlementsByKind(ctx, group)
		if err != nil {
			return report, err
		}
		settled := make(map[models.TransactionKind]bool, len(settlements))
		for kind := range settlements {
			settled[kind] = true
		}

		report.GroupsChecked++
		report.Violations = append(report.Violations, checkGroup(group, rows, linked, settled)...)
	}

	logger.InfoCtx(ctx, "Ledger check finished",
		logger.Int("groups_checked", report.GroupsChecked),
		logger.Int("violations", len(report.Violations)))
	return report, nil
}
