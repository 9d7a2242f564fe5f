package usecase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
)

const (
	RulePairCount      = "pair-count"
	RulePairAmounts    = "pair-amounts"
	RuleNetAmount      = "net-amount"
	RuleHostAmount     = "host-amount"
	RuleRefundLink     = "refund-link"
	RuleDebtSettlement = "debt-settlement"
)

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// checkGroup verifies the invariants of one transaction group. linked holds
// rows of other groups referenced through refund links, settled the kinds
// of the group that have a settlement row.
func checkGroup(
	group uuid.UUID,
	rows []*models.Transaction,
	linked map[int64]*models.Transaction,
	settled map[models.TransactionKind]bool,
) []models.Violation {
	var violations []models.Violation
	violate := func(id int64, rule, format string, args ...interface{}) {
		violations = append(violations, models.Violation{
			TransactionGroup: group,
			TransactionID:    id,
			Rule:             rule,
			Detail:           fmt.Sprintf(format, args...),
		})
	}

	byID := make(map[int64]*models.Transaction, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	for _, row := range rows {
		expectedNet := row.Amount + fromHostCurrency(row.FeesInHostCurrency(), row.HostCurrencyFxRate)
		if row.NetAmountInCollectiveCurrency != expectedNet {
			violate(row.ID, RuleNetAmount, "net %d, expected %d", row.NetAmountInCollectiveCurrency, expectedNet)
		}

		if row.RefundTransactionID != nil {
			target, ok := byID[*row.RefundTransactionID]
			if !ok {
				target, ok = linked[*row.RefundTransactionID]
			}
			switch {
			case !ok:
				violate(row.ID, RuleRefundLink, "refund transaction %d does not exist", *row.RefundTransactionID)
			case target.RefundTransactionID == nil || *target.RefundTransactionID != row.ID:
				violate(row.ID, RuleRefundLink, "transaction %d does not link back", target.ID)
			case target.IsRefund == row.IsRefund:
				violate(row.ID, RuleRefundLink, "transaction %d links to a row with the same refund flag", target.ID)
			}
		}

		if row.IsDebt && row.Type == models.TransactionTypeCredit && !settled[row.Kind] {
			violate(row.ID, RuleDebtSettlement, "no settlement for %s debt", row.Kind)
		}
	}

	// count violations first, pairing only makes sense for balanced keys
	counts := make(map[models.PairKey][2]int)
	var keys []models.PairKey
	for _, row := range rows {
		key := row.PairKey()
		c, seen := counts[key]
		if !seen {
			keys = append(keys, key)
		}
		if row.Type == models.TransactionTypeCredit {
			c[0]++
		} else {
			c[1]++
		}
		counts[key] = c
	}

	balanced := make([]*models.Transaction, 0, len(rows))
	for _, key := range keys {
		c := counts[key]
		if c[0] != c[1] {
			violate(0, RulePairCount, "%s (debt=%t, refund=%t) has %d credits and %d debits", key.Kind, key.IsDebt, key.IsRefund, c[0], c[1])
		}
	}
	for _, row := range rows {
		c := counts[row.PairKey()]
		if c[0] == c[1] {
			balanced = append(balanced, row)
		}
	}

	pairs, err := matchPairs(balanced)
	if err != nil {
		return violations
	}

	for _, p := range pairs {
		credit, debit := p.credit, p.debit
		if credit.Amount != -debit.NetAmountInCollectiveCurrency || credit.NetAmountInCollectiveCurrency != -debit.Amount {
			violate(credit.ID, RulePairAmounts,
				"credit amount/net %d/%d, debit amount/net %d/%d",
				credit.Amount, credit.NetAmountInCollectiveCurrency, debit.Amount, debit.NetAmountInCollectiveCurrency)
		}

		expectedCredit := toHostCurrency(credit.Amount, credit.HostCurrencyFxRate)
		if abs(credit.AmountInHostCurrency-expectedCredit) > 1 {
			violate(credit.ID, RuleHostAmount, "amount in host currency %d, expected %d", credit.AmountInHostCurrency, expectedCredit)
		}
		expectedDebit := -(credit.AmountInHostCurrency + credit.FeesInHostCurrency())
		if abs(debit.AmountInHostCurrency-expectedDebit) > 1 {
			violate(debit.ID, RuleHostAmount, "amount in host currency %d, expected %d", debit.AmountInHostCurrency, expectedDebit)
		}
	}

	return violations
}

// externalRefundLinks returns refund link targets that are not part of rows
func externalRefundLinks(rows []*models.Transaction) []int64 {
	inGroup := make(map[int64]bool, len(rows))
	for _, row := range rows {
		inGroup[row.ID] = true
	}
	var ids []int64
	for _, row := range rows {
		if row.RefundTransactionID != nil && !inGroup[*row.RefundTransactionID] {
			ids = append(ids, *row.RefundTransactionID)
		}
	}
	return ids
}
