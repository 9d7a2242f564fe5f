package usecase

import (
	"errors"
	"fmt"

	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	errNothingToSplit      = errors.New("group carries no legacy fees")
	errRefundedLegacyGroup = errors.New("legacy fees on a refund or refunded pair")
)

// feeShare is a legacy fee column turned into its own pair
type feeShare struct {
	kind      models.TransactionKind
	inHost    int64 // positive, host currency
	receiver  int64
	converted int64
}

// planSplit moves the legacy fee columns of every pair of a group into
// HOST_FEE, PLATFORM_FEE and PAYMENT_PROCESSOR_FEE pairs paid by the credited
// collective. Both parties of the split pair keep their exact balance.
func planSplit(settings ledgerSettings, rows []*models.Transaction) (*models.LedgerPlan, map[string]int64, error) {
	pairs, err := matchPairs(rows)
	if err != nil {
		return nil, nil, err
	}

	plan := &models.LedgerPlan{}
	byKind := make(map[string]int64)

	for _, p := range pairs {
		if !p.credit.HasLegacyFees() && !p.debit.HasLegacyFees() {
			continue
		}
		if p.credit.IsRefund || p.credit.RefundTransactionID != nil || p.debit.RefundTransactionID != nil {
			return nil, nil, errRefundedLegacyGroup
		}

		credit := p.credit
		rate := credit.HostCurrencyFxRate

		shares := make([]*feeShare, 0, 3)
		if credit.HostFeeInHostCurrency != 0 {
			if credit.HostCollectiveID == nil {
				return nil, nil, fmt.Errorf("transaction %d has a host fee but no host", credit.ID)
			}
			shares = append(shares, &feeShare{kind: models.KindHostFee, inHost: -credit.HostFeeInHostCurrency, receiver: *credit.HostCollectiveID})
		}
		if credit.PlatformFeeInHostCurrency != 0 {
			if settings.platformID == 0 {
				return nil, nil, fmt.Errorf("transaction %d has a platform fee but no platform collective is configured", credit.ID)
			}
			shares = append(shares, &feeShare{kind: models.KindPlatformFee, inHost: -credit.PlatformFeeInHostCurrency, receiver: settings.platformID})
		}
		if credit.PaymentProcessorFeeInHostCurrency != 0 {
			if settings.processorID == 0 {
				return nil, nil, fmt.Errorf("transaction %d has a processor fee but no processor collective is configured", credit.ID)
			}
			shares = append(shares, &feeShare{kind: models.KindPaymentProcessorFee, inHost: -credit.PaymentProcessorFeeInHostCurrency, receiver: settings.processorID})
		}
		if len(shares) == 0 {
			// tax only, stays on the row
			continue
		}

		newNet := credit.Amount + fromHostCurrency(credit.TaxAmount, rate)
		total := newNet - credit.NetAmountInCollectiveCurrency

		if err := allocateShares(shares, total, rate); err != nil {
			return nil, nil, fmt.Errorf("transaction %d: %w", credit.ID, err)
		}

		updatedCredit := *credit
		updatedCredit.HostFeeInHostCurrency = 0
		updatedCredit.PlatformFeeInHostCurrency = 0
		updatedCredit.PaymentProcessorFeeInHostCurrency = 0
		updatedCredit.NetAmountInCollectiveCurrency = newNet

		updatedDebit := debitFor(&updatedCredit)
		updatedDebit.ID = p.debit.ID
		updatedDebit.UUID = p.debit.UUID
		updatedDebit.CreatedAt = p.debit.CreatedAt
		updatedDebit.Description = p.debit.Description

		plan.Updates = append(plan.Updates, &updatedCredit, updatedDebit)

		ec := entryContext{
			group:        credit.TransactionGroup,
			currency:     credit.Currency,
			hostCurrency: credit.HostCurrency,
			fxRate:       rate,
			hostID:       credit.HostCollectiveID,
			orderID:      credit.OrderID,
			expenseID:    credit.ExpenseID,
			createdAt:    credit.CreatedAt,
		}
		for _, s := range shares {
			if addPair(plan, ec, movement{
				kind:   s.kind,
				from:   credit.CollectiveID,
				to:     s.receiver,
				amount: s.converted,
				desc:   splitDescription(s.kind),
			}) != nil {
				byKind[string(s.kind)] += s.converted
			}
		}
	}

	if plan.Empty() {
		return nil, nil, errNothingToSplit
	}
	return plan, byKind, nil
}

// allocateShares converts the fee shares to the transaction currency so that
// they sum to total. Shares are rounded cumulatively, which keeps every share
// at zero or above whatever the rate. A stored net amount that disagrees with
// its fee columns is settled on the last shares.
func allocateShares(shares []*feeShare, total int64, rate decimal.Decimal) error {
	var cum, assigned int64
	for _, s := range shares {
		cum += s.inHost
		next := fromHostCurrency(cum, rate)
		s.converted = next - assigned
		assigned = next
	}

	diff := total - assigned
	if diff > 0 {
		shares[len(shares)-1].converted += diff
		return nil
	}
	for i := len(shares) - 1; i >= 0 && diff < 0; i-- {
		take := min(-diff, shares[i].converted)
		shares[i].converted -= take
		diff += take
	}
	if diff < 0 {
		return fmt.Errorf("net amount exceeds the gross amount by %d", -diff)
	}
	return nil
}

func splitDescription(kind models.TransactionKind) string {
	switch kind {
	case models.KindHostFee:
		return "Host fee"
	case models.KindPlatformFee:
		return "Platform fee"
	default:
		return "Payment processor fee"
	}
}

// mergeSplit returns rows as they will read once plan is applied
func mergeSplit(rows []*models.Transaction, plan *models.LedgerPlan) []*models.Transaction {
	updated := make(map[int64]*models.Transaction, len(plan.Updates))
	for _, t := range plan.Updates {
		updated[t.ID] = t
	}

	merged := make([]*models.Transaction, 0, len(rows)+len(plan.Inserts))
	for _, row := range rows {
		if u, ok := updated[row.ID]; ok {
			merged = append(merged, u)
			continue
		}
		merged = append(merged, row)
	}
	return append(merged, plan.Inserts...)
}
