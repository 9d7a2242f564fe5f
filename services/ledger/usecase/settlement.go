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
)

// ListSettlements lists settlement debts joined with their CREDIT rows
func (uc *ledgerUC) ListSettlements(ctx context.Context, filter models.SettlementFilter) ([]*models.SettlementDebt, error) {
	switch filter.Status {
	case "", models.SettlementOwed, models.SettlementInvoiced, models.SettlementSettled:
	default:
		return nil, invalid("unknown settlement status %q", filter.Status)
	}
	for _, k := range filter.Kinds {
		if !k.IsDebtKind() {
			return nil, invalid("%s is not a debt kind", k)
		}
	}
	if filter.Limit < 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return uc.repo.ListSettlements(ctx, filter)
}

func summarize(invoiceID uuid.UUID, hostID int64, debts []*models.SettlementDebt, at time.Time) *models.SettlementInvoice {
	invoice := &models.SettlementInvoice{
		InvoiceID:        invoiceID,
		HostCollectiveID: hostID,
		Totals:           make(map[string]int64),
		Debts:            len(debts),
		CreatedAt:        at,
	}
	for _, d := range debts {
		invoice.Totals[d.Currency] += d.Amount
	}
	return invoice
}

// InvoiceHostSettlements groups every debt a host owed before until into one invoice
func (uc *ledgerUC) InvoiceHostSettlements(ctx context.Context, hostCollectiveID int64, until time.Time) (*models.SettlementInvoice, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "LedgerUC.InvoiceHostSettlements", func(ctx context.Context) (*models.SettlementInvoice, error) {
		if hostCollectiveID == 0 {
			return nil, invalid("host is required")
		}

		debts, err := uc.repo.ListSettlements(ctx, models.SettlementFilter{
			HostCollectiveID: hostCollectiveID,
			Status:           models.SettlementOwed,
			CreatedBefore:    &until,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list owed settlements: %w", err)
		}
		if len(debts) == 0 {
			return nil, models.ErrNoOwedSettlements
		}

		invoiceID := uuid.New()
		n, err := uc.repo.InvoiceSettlements(ctx, debts, invoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to invoice settlements: %w", err)
		}
		if n == 0 {
			// a concurrent run invoiced them first
			return nil, models.ErrNoOwedSettlements
		}

		invoiced, err := uc.repo.ListSettlements(ctx, models.SettlementFilter{InvoiceID: &invoiceID})
		if err != nil {
			return nil, fmt.Errorf("failed to list invoiced settlements: %w", err)
		}

		now := uc.now()
		invoice := summarize(invoiceID, hostCollectiveID, invoiced, now)
		logger.InfoCtx(ctx, "Settlements invoiced",
			logger.String("invoice_id", invoiceID.String()),
			logger.Int64("host_collective_id", hostCollectiveID),
			logger.Int("debts", invoice.Debts))

		event := &models.SettlementEvent{
			InvoiceID:        invoiceID,
			HostCollectiveID: hostCollectiveID,
			Status:           models.SettlementInvoiced,
			Totals:           invoice.Totals,
			Count:            int64(invoice.Debts),
			OccurredAt:       now,
		}
		if err := uc.gw.PublishSettlementEvent(ctx, event); err != nil {
			logger.ErrorCtx(ctx, "Failed to publish settlement event",
				logger.String("invoice_id", invoiceID.String()),
				logger.Err(err))
		}
		return invoice, nil
	})
}

// MarkInvoiceSettled marks the debts of a paid invoice as settled
func (uc *ledgerUC) MarkInvoiceSettled(ctx context.Context, invoiceID uuid.UUID) (*models.SettlementInvoice, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "LedgerUC.MarkInvoiceSettled", func(ctx context.Context) (*models.SettlementInvoice, error) {
		debts, err := uc.repo.ListSettlements(ctx, models.SettlementFilter{InvoiceID: &invoiceID})
		if err != nil {
			return nil, fmt.Errorf("failed to list invoice settlements: %w", err)
		}
		if len(debts) == 0 {
			return nil, models.ErrInvoiceNotFound
		}

		n, err := uc.repo.SettleInvoice(ctx, invoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to settle invoice: %w", err)
		}

		now := uc.now()
		invoice := summarize(invoiceID, debts[0].HostCollectiveID, debts, now)
		logger.InfoCtx(ctx, "Invoice settled",
			logger.String("invoice_id", invoiceID.String()),
			logger.Int64("settled", n))

		event := &models.SettlementEvent{
			InvoiceID:        invoiceID,
			HostCollectiveID: invoice.HostCollectiveID,
			Status:           models.SettlementSettled,
			Totals:           invoice.Totals,
			Count:            n,
			OccurredAt:       now,
		}
		if err := uc.gw.PublishSettlementEvent(ctx, event); err != nil {
			logger.ErrorCtx(ctx, "Failed to publish settlement event",
				logger.String("invoice_id", invoiceID.String()),
				logger.Err(err))
		}
		return invoice, nil
	})
}

// RunMonthlySettlement invoices every host for the debts owed before the current month
func (uc *ledgerUC) RunMonthlySettlement(ctx context.Context, now time.Time) ([]*models.SettlementInvoice, error) {
	now = now.UTC()
	until := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	key := fmt.Sprintf(constants.KeySettlementLock, until.Format("2006-01"))

	var invoices []*models.SettlementInvoice
	err := uc.withLock(ctx, key, func() error {
		hosts, err := uc.repo.ListHostsWithOwedSettlements(ctx, until)
		if err != nil {
			return fmt.Errorf("failed to list hosts: %w", err)
		}

		for _, host := range hosts {
			if err := ctx.Err(); err != nil {
				return err
			}
			invoice, err := uc.InvoiceHostSettlements(ctx, host, until)
			if errors.Is(err, models.ErrNoOwedSettlements) {
				continue
			}
			if err != nil {
				logger.ErrorCtx(ctx, "Failed to invoice host settlements",
					logger.Int64("host_collective_id", host),
					logger.Err(err))
				continue
			}
			invoices = append(invoices, invoice)
		}
		return nil
	})
	if err != nil {
		return invoices, err
	}

	logger.InfoCtx(ctx, "Monthly settlement finished",
		logger.Time("until", until),
		logger.Int("invoices", len(invoices)))
	return invoices, nil
}
