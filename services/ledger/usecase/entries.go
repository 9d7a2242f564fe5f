package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ledgerSettings are the platform-level collectives fees are paid to
type ledgerSettings struct {
	platformID  int64
	processorID int64
}

// movement describes money moving from one collective to another
type movement struct {
	kind     models.TransactionKind
	from     int64 // owner of the DEBIT row
	to       int64 // owner of the CREDIT row
	amount   int64
	isDebt   bool
	isRefund bool
	desc     string
}

// entryContext holds what every row of a group shares
type entryContext struct {
	group        uuid.UUID
	currency     string
	hostCurrency string
	fxRate       decimal.Decimal
	hostID       *int64
	orderID      *int64
	expenseID    *int64
	createdAt    time.Time
}

// pair is the CREDIT and DEBIT rows of one economic movement
type pair struct {
	credit *models.Transaction
	debit  *models.Transaction
}

func normalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return rate
}

func toHostCurrency(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(normalizeRate(rate)).Round(0).IntPart()
}

func fromHostCurrency(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Div(normalizeRate(rate)).Round(0).IntPart()
}

func percentOf(amount int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(percent).Div(hundred).Round(0).IntPart()
}

func int64Ptr(v int64) *int64 {
	return &v
}

// newPair builds the CREDIT row of mv and derives its DEBIT
func newPair(ec entryContext, mv movement) (*models.Transaction, *models.Transaction) {
	credit := &models.Transaction{
		UUID:                          uuid.New(),
		Kind:                          mv.kind,
		Type:                          models.TransactionTypeCredit,
		TransactionGroup:              ec.group,
		CollectiveID:                  mv.to,
		FromCollectiveID:              mv.from,
		HostCollectiveID:              ec.hostID,
		OrderID:                       ec.orderID,
		ExpenseID:                     ec.expenseID,
		Amount:                        mv.amount,
		Currency:                      ec.currency,
		HostCurrency:                  ec.hostCurrency,
		HostCurrencyFxRate:            normalizeRate(ec.fxRate),
		AmountInHostCurrency:          toHostCurrency(mv.amount, ec.fxRate),
		NetAmountInCollectiveCurrency: mv.amount,
		IsDebt:                        mv.isDebt,
		IsRefund:                      mv.isRefund,
		Description:                   mv.desc,
		CreatedAt:                     ec.createdAt,
	}
	return credit, debitFor(credit)
}

// debitFor derives the DEBIT row mirroring credit: parties swapped,
// amount and net exchanged and negated, fee columns shared.
func debitFor(credit *models.Transaction) *models.Transaction {
	debit := *credit
	debit.ID = 0
	debit.UUID = uuid.New()
	debit.Type = models.TransactionTypeDebit
	debit.CollectiveID = credit.FromCollectiveID
	debit.FromCollectiveID = credit.CollectiveID
	debit.Amount = -credit.NetAmountInCollectiveCurrency
	debit.NetAmountInCollectiveCurrency = -credit.Amount
	debit.AmountInHostCurrency = -(credit.AmountInHostCurrency + credit.FeesInHostCurrency())
	debit.RefundTransactionID = nil
	debit.RefundOf = nil
	return &debit
}

// addPair appends the rows of mv to plan, skipping empty movements
func addPair(plan *models.LedgerPlan, ec entryContext, mv movement) *pair {
	if mv.amount == 0 {
		return nil
	}
	credit, debit := newPair(ec, mv)
	plan.Inserts = append(plan.Inserts, credit, debit)
	return &pair{credit: credit, debit: debit}
}

// matchPairs pairs the rows of a group. Rows sharing a PairKey are paired
// by position, so the n-th CREDIT goes with the n-th DEBIT.
func matchPairs(rows []*models.Transaction) ([]*pair, error) {
	type bucket struct {
		credits []*models.Transaction
		debits  []*models.Transaction
	}
	buckets := make(map[models.PairKey]*bucket)
	var order []models.PairKey

	for _, row := range rows {
		key := row.PairKey()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		if row.Type == models.TransactionTypeCredit {
			b.credits = append(b.credits, row)
		} else {
			b.debits = append(b.debits, row)
		}
	}

	var pairs []*pair
	for _, key := range order {
		b := buckets[key]
		if len(b.credits) != len(b.debits) {
			return nil, fmt.Errorf("unbalanced %s pair: %d credits, %d debits", key.Kind, len(b.credits), len(b.debits))
		}
		for i := range b.credits {
			pairs = append(pairs, &pair{credit: b.credits[i], debit: b.debits[i]})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].credit.ID < pairs[j].credit.ID
	})
	return pairs, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

func validateContribution(in *models.ContributionInput) error {
	switch {
	case in.Kind != models.KindContribution && in.Kind != models.KindAddedFunds:
		return invalid("kind must be %s or %s", models.KindContribution, models.KindAddedFunds)
	case in.FromCollectiveID == 0 || in.CollectiveID == 0 || in.HostCollectiveID == 0:
		return invalid("contributor, collective and host are required")
	case in.Currency == "":
		return invalid("currency is required")
	case in.Amount <= 0:
		return invalid("amount must be positive")
	case in.PlatformTipAmount < 0 || in.PaymentProcessorFee < 0:
		return invalid("tip and fees must not be negative")
	case in.PlatformTipAmount >= in.Amount:
		return invalid("platform tip must be lower than the amount")
	case in.Kind == models.KindAddedFunds && in.PlatformTipAmount > 0:
		return invalid("added funds do not carry a platform tip")
	case in.HostCurrencyFxRate.IsNegative():
		return invalid("fx rate must not be negative")
	case !validPercent(in.HostFeePercent) || !validPercent(in.HostFeeSharePercent):
		return invalid("percentages must be between 0 and 100")
	}

	contribution := in.Amount - in.PlatformTipAmount
	if percentOf(contribution, in.HostFeePercent)+in.PaymentProcessorFee > contribution {
		return invalid("fees exceed the contribution")
	}
	return nil
}

// planContribution records a settled incoming payment as one group of pairs
func planContribution(settings ledgerSettings, in *models.ContributionInput, now time.Time) (*models.LedgerPlan, error) {
	if err := validateContribution(in); err != nil {
		return nil, err
	}

	hostCurrency := in.HostCurrency
	if hostCurrency == "" {
		hostCurrency = in.Currency
	}
	processorID := settings.processorID
	if in.PaymentProcessorCollectiveID != nil {
		processorID = *in.PaymentProcessorCollectiveID
	}
	if in.PaymentProcessorFee > 0 && processorID == 0 {
		return nil, invalid("payment processor collective is not configured")
	}

	ec := entryContext{
		group:        uuid.New(),
		currency:     in.Currency,
		hostCurrency: hostCurrency,
		fxRate:       in.HostCurrencyFxRate,
		hostID:       int64Ptr(in.HostCollectiveID),
		orderID:      in.OrderID,
		createdAt:    now,
	}
	plan := &models.LedgerPlan{}
	contribution := in.Amount - in.PlatformTipAmount

	addPair(plan, ec, movement{
		kind: in.Kind, from: in.FromCollectiveID, to: in.CollectiveID,
		amount: contribution, desc: in.Description,
	})

	if in.PlatformTipAmount > 0 {
		if settings.platformID == 0 {
			return nil, invalid("platform collective is not configured")
		}
		addPair(plan, ec, movement{
			kind: models.KindPlatformTip, from: in.FromCollectiveID, to: settings.platformID,
			amount: in.PlatformTipAmount, desc: "Financial contribution to the platform",
		})
		if in.PlatformTipCollectedByHost {
			addPair(plan, ec, movement{
				kind: models.KindPlatformTipDebt, from: settings.platformID, to: in.HostCollectiveID,
				amount: in.PlatformTipAmount, isDebt: true, desc: "Platform tip collected by the host",
			})
			plan.Settlements = append(plan.Settlements, owed(ec.group, models.KindPlatformTipDebt, now))
		}
	}

	hostFee := percentOf(contribution, in.HostFeePercent)
	addPair(plan, ec, movement{
		kind: models.KindHostFee, from: in.CollectiveID, to: in.HostCollectiveID,
		amount: hostFee, desc: "Host fee",
	})

	share := percentOf(hostFee, in.HostFeeSharePercent)
	if share > 0 {
		if settings.platformID == 0 {
			return nil, invalid("platform collective is not configured")
		}
		addPair(plan, ec, movement{
			kind: models.KindHostFeeShare, from: in.HostCollectiveID, to: settings.platformID,
			amount: share, desc: "Host fee share",
		})
		if in.HostFeeShareIsDebt {
			addPair(plan, ec, movement{
				kind: models.KindHostFeeShareDebt, from: settings.platformID, to: in.HostCollectiveID,
				amount: share, isDebt: true, desc: "Host fee share owed to the platform",
			})
			plan.Settlements = append(plan.Settlements, owed(ec.group, models.KindHostFeeShareDebt, now))
		}
	}

	addPair(plan, ec, movement{
		kind: models.KindPaymentProcessorFee, from: in.CollectiveID, to: processorID,
		amount: in.PaymentProcessorFee, desc: "Payment processor fee",
	})

	return plan, nil
}

func validateExpensePayment(in *models.ExpensePaymentInput) error {
	switch {
	case in.CollectiveID == 0 || in.PayeeCollectiveID == 0 || in.HostCollectiveID == 0:
		return invalid("collective, payee and host are required")
	case in.CollectiveID == in.PayeeCollectiveID:
		return invalid("payee must differ from the paying collective")
	case in.Currency == "":
		return invalid("currency is required")
	case in.Amount <= 0:
		return invalid("amount must be positive")
	case in.PaymentProcessorFee < 0:
		return invalid("payment processor fee must not be negative")
	case in.HostCurrencyFxRate.IsNegative():
		return invalid("fx rate must not be negative")
	}
	return nil
}

// planExpensePayment records a payout and the processor fee the collective pays for it
func planExpensePayment(settings ledgerSettings, in *models.ExpensePaymentInput, now time.Time) (*models.LedgerPlan, error) {
	if err := validateExpensePayment(in); err != nil {
		return nil, err
	}

	hostCurrency := in.HostCurrency
	if hostCurrency == "" {
		hostCurrency = in.Currency
	}
	processorID := settings.processorID
	if in.PaymentProcessorCollectiveID != nil {
		processorID = *in.PaymentProcessorCollectiveID
	}
	if in.PaymentProcessorFee > 0 && processorID == 0 {
		return nil, invalid("payment processor collective is not configured")
	}

	ec := entryContext{
		group:        uuid.New(),
		currency:     in.Currency,
		hostCurrency: hostCurrency,
		fxRate:       in.HostCurrencyFxRate,
		hostID:       int64Ptr(in.HostCollectiveID),
		expenseID:    in.ExpenseID,
		createdAt:    now,
	}
	plan := &models.LedgerPlan{}

	addPair(plan, ec, movement{
		kind: models.KindExpense, from: in.CollectiveID, to: in.PayeeCollectiveID,
		amount: in.Amount, desc: in.Description,
	})
	addPair(plan, ec, movement{
		kind: models.KindPaymentProcessorFee, from: in.CollectiveID, to: processorID,
		amount: in.PaymentProcessorFee, desc: "Payment processor fee",
	})

	return plan, nil
}

func owed(group uuid.UUID, kind models.TransactionKind, now time.Time) *models.TransactionSettlement {
	return &models.TransactionSettlement{
		TransactionGroup: group,
		Kind:             kind,
		Status:           models.SettlementOwed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
