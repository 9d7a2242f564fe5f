package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
)

func isTipKind(kind models.TransactionKind) bool {
	return kind == models.KindPlatformTip || kind == models.KindPlatformTipDebt
}

// planRefund reverses the pairs of a group into a new refund group. Groups
// still carrying legacy fee columns are split in the same plan first.
// settlements holds the settlement rows of the original group by kind.
func planRefund(
	settings ledgerSettings,
	rows []*models.Transaction,
	settlements map[models.TransactionKind]*models.SettlementDebt,
	opts models.RefundOptions,
	now time.Time,
) (*models.LedgerPlan, uuid.UUID, error) {
	if len(rows) == 0 {
		return nil, uuid.Nil, models.ErrGroupNotFound
	}

	legacy := false
	for _, row := range rows {
		if row.IsRefund {
			return nil, uuid.Nil, invalid("group %s is a refund", row.TransactionGroup)
		}
		if row.RefundTransactionID != nil {
			return nil, uuid.Nil, models.ErrAlreadyRefunded
		}
		legacy = legacy || row.HasLegacyFees()
	}

	plan := &models.LedgerPlan{}
	working := rows
	if legacy {
		split, _, err := planSplit(settings, rows)
		switch {
		case err == nil:
			plan.Updates = split.Updates
			plan.Inserts = split.Inserts
			working = mergeSplit(rows, split)
		case err != errNothingToSplit:
			return nil, uuid.Nil, err
		}
	}

	pairs, err := matchPairs(working)
	if err != nil {
		return nil, uuid.Nil, err
	}

	refundGroup := uuid.New()
	for _, p := range pairs {
		original := p.credit
		if opts.KeepPlatformTip && isTipKind(original.Kind) {
			continue
		}

		ec := entryContext{
			group:        refundGroup,
			currency:     original.Currency,
			hostCurrency: original.HostCurrency,
			fxRate:       original.HostCurrencyFxRate,
			hostID:       original.HostCollectiveID,
			orderID:      original.OrderID,
			expenseID:    original.ExpenseID,
			createdAt:    now,
		}

		if original.Kind == models.KindPaymentProcessorFee && !opts.RefundPaymentProcessorFee {
			// the processor keeps its fee, the host covers it for the collective
			if original.HostCollectiveID == nil {
				return nil, uuid.Nil, invalid("processor fee of transaction %d has no host to cover it", original.ID)
			}
			addPair(plan, ec, movement{
				kind:     models.KindPaymentProcessorCover,
				from:     *original.HostCollectiveID,
				to:       p.debit.CollectiveID,
				amount:   original.Amount,
				isRefund: true,
				desc:     "Cover of payment processor fee for refund",
			})
			continue
		}

		reversed := addPair(plan, ec, movement{
			kind:     original.Kind,
			from:     original.CollectiveID,
			to:       original.FromCollectiveID,
			amount:   original.Amount,
			isDebt:   original.IsDebt,
			isRefund: true,
			desc:     "Refund of \"" + original.Description + "\"",
		})
		if reversed == nil {
			continue
		}
		reversed.credit.RefundOf = p.debit
		reversed.debit.RefundOf = p.credit

		if original.IsDebt {
			if s, ok := settlements[original.Kind]; ok && s.Status == models.SettlementOwed {
				// debt and its reversal cancel out
				settledOriginal := s.TransactionSettlement
				settledOriginal.Status = models.SettlementSettled
				settledOriginal.UpdatedAt = now
				plan.Settlements = append(plan.Settlements, &settledOriginal)

				cancelled := owed(refundGroup, original.Kind, now)
				cancelled.Status = models.SettlementSettled
				plan.Settlements = append(plan.Settlements, cancelled)
			} else {
				plan.Settlements = append(plan.Settlements, owed(refundGroup, original.Kind, now))
			}
		}
	}

	return plan, refundGroup, nil
}

// refundRows returns the inserted rows belonging to group
func refundRows(plan *models.LedgerPlan, group uuid.UUID) []*models.Transaction {
	var rows []*models.Transaction
	for _, t := range plan.Inserts {
		if t.TransactionGroup == group {
			rows = append(rows, t)
		}
	}
	return rows
}
