package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the side of a double-entry pair
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// TransactionKind classifies the economic event a pair records
type TransactionKind string

const (
	KindContribution          TransactionKind = "CONTRIBUTION"
	KindAddedFunds            TransactionKind = "ADDED_FUNDS"
	KindExpense               TransactionKind = "EXPENSE"
	KindPlatformTip           TransactionKind = "PLATFORM_TIP"
	KindPlatformTipDebt       TransactionKind = "PLATFORM_TIP_DEBT"
	KindPlatformFee           TransactionKind = "PLATFORM_FEE"
	KindHostFee               TransactionKind = "HOST_FEE"
	KindHostFeeShare          TransactionKind = "HOST_FEE_SHARE"
	KindHostFeeShareDebt      TransactionKind = "HOST_FEE_SHARE_DEBT"
	KindPaymentProcessorFee   TransactionKind = "PAYMENT_PROCESSOR_FEE"
	KindPaymentProcessorCover TransactionKind = "PAYMENT_PROCESSOR_COVER"
	KindBalanceTransfer       TransactionKind = "BALANCE_TRANSFER"
	KindPrepaidPaymentMethod  TransactionKind = "PREPAID_PAYMENT_METHOD"
	KindTax                   TransactionKind = "TAX"
)

// IsDebtKind reports whether pairs of this kind are recorded as debts that need settlement
func (k TransactionKind) IsDebtKind() bool {
	return k == KindPlatformTipDebt || k == KindHostFeeShareDebt
}

// Valid reports whether k is a known kind
func (k TransactionKind) Valid() bool {
	switch k {
	case KindContribution, KindAddedFunds, KindExpense, KindPlatformTip, KindPlatformTipDebt,
		KindPlatformFee, KindHostFee, KindHostFeeShare, KindHostFeeShareDebt, KindPaymentProcessorFee,
		KindPaymentProcessorCover, KindBalanceTransfer, KindPrepaidPaymentMethod, KindTax:
		return true
	}
	return false
}

// Transaction represents one row of the double-entry ledger.
// Amounts are in minor units; legacy fee columns are in host currency and never positive.
type Transaction struct {
	ID                                int64           `json:"id" db:"id"`
	UUID                              uuid.UUID       `json:"uuid" db:"uuid"`
	Kind                              TransactionKind `json:"kind" db:"kind"`
	Type                              TransactionType `json:"type" db:"type"`
	TransactionGroup                  uuid.UUID       `json:"transaction_group" db:"transaction_group"`
	CollectiveID                      int64           `json:"collective_id" db:"collective_id"`
	FromCollectiveID                  int64           `json:"from_collective_id" db:"from_collective_id"`
	HostCollectiveID                  *int64          `json:"host_collective_id,omitempty" db:"host_collective_id"`
	OrderID                           *int64          `json:"order_id,omitempty" db:"order_id"`
	ExpenseID                         *int64          `json:"expense_id,omitempty" db:"expense_id"`
	Amount                            int64           `json:"amount" db:"amount"`
	Currency                          string          `json:"currency" db:"currency"`
	HostCurrency                      string          `json:"host_currency" db:"host_currency"`
	HostCurrencyFxRate                decimal.Decimal `json:"host_currency_fx_rate" db:"host_currency_fx_rate"`
	AmountInHostCurrency              int64           `json:"amount_in_host_currency" db:"amount_in_host_currency"`
	HostFeeInHostCurrency             int64           `json:"host_fee_in_host_currency" db:"host_fee_in_host_currency"`
	PlatformFeeInHostCurrency         int64           `json:"platform_fee_in_host_currency" db:"platform_fee_in_host_currency"`
	PaymentProcessorFeeInHostCurrency int64           `json:"payment_processor_fee_in_host_currency" db:"payment_processor_fee_in_host_currency"`
	TaxAmount                         int64           `json:"tax_amount" db:"tax_amount"`
	NetAmountInCollectiveCurrency     int64           `json:"net_amount_in_collective_currency" db:"net_amount_in_collective_currency"`
	IsRefund                          bool            `json:"is_refund" db:"is_refund"`
	RefundTransactionID               *int64          `json:"refund_transaction_id,omitempty" db:"refund_transaction_id"`
	IsDebt                            bool            `json:"is_debt" db:"is_debt"`
	Description                       string          `json:"description" db:"description"`
	CreatedAt                         time.Time       `json:"created_at" db:"created_at"`

	// RefundOf points at the row this one refunds while neither has been persisted together
	RefundOf *Transaction `json:"-" db:"-"`
}

// FeesInHostCurrency returns the sum of the legacy fee columns
func (t *Transaction) FeesInHostCurrency() int64 {
	return t.HostFeeInHostCurrency + t.PlatformFeeInHostCurrency + t.PaymentProcessorFeeInHostCurrency + t.TaxAmount
}

// HasLegacyFees reports whether fees are still embedded in the row instead of split into their own pairs
func (t *Transaction) HasLegacyFees() bool {
	return t.FeesInHostCurrency() != 0
}

// PairKey identifies the pair a row belongs to inside its group
func (t *Transaction) PairKey() PairKey {
	return PairKey{Kind: t.Kind, IsDebt: t.IsDebt, IsRefund: t.IsRefund}
}

// PairKey groups the CREDIT and DEBIT rows of a pair
type PairKey struct {
	Kind     TransactionKind
	IsDebt   bool
	IsRefund bool
}

// ContributionInput describes a settled incoming payment to record
type ContributionInput struct {
	Kind                         TransactionKind `json:"kind"`
	OrderID                      *int64          `json:"order_id"`
	FromCollectiveID             int64           `json:"from_collective_id"`
	CollectiveID                 int64           `json:"collective_id"`
	HostCollectiveID             int64           `json:"host_collective_id"`
	Amount                       int64           `json:"amount"`
	Currency                     string          `json:"currency"`
	HostCurrency                 string          `json:"host_currency"`
	HostCurrencyFxRate           decimal.Decimal `json:"host_currency_fx_rate"`
	PlatformTipAmount            int64           `json:"platform_tip_amount"`
	PlatformTipCollectedByHost   bool            `json:"platform_tip_collected_by_host"`
	HostFeePercent               decimal.Decimal `json:"host_fee_percent"`
	HostFeeSharePercent          decimal.Decimal `json:"host_fee_share_percent"`
	HostFeeShareIsDebt           bool            `json:"host_fee_share_is_debt"`
	PaymentProcessorFee          int64           `json:"payment_processor_fee"`
	PaymentProcessorCollectiveID *int64          `json:"payment_processor_collective_id"`
	Description                  string          `json:"description"`
}

// ExpensePaymentInput describes a payout from a collective to a payee
type ExpensePaymentInput struct {
	ExpenseID                    *int64          `json:"expense_id"`
	CollectiveID                 int64           `json:"collective_id"`
	PayeeCollectiveID            int64           `json:"payee_collective_id"`
	HostCollectiveID             int64           `json:"host_collective_id"`
	Amount                       int64           `json:"amount"`
	Currency                     string          `json:"currency"`
	HostCurrency                 string          `json:"host_currency"`
	HostCurrencyFxRate           decimal.Decimal `json:"host_currency_fx_rate"`
	PaymentProcessorFee          int64           `json:"payment_processor_fee"`
	PaymentProcessorCollectiveID *int64          `json:"payment_processor_collective_id"`
	Description                  string          `json:"description"`
}

// RefundOptions controls which pairs of a group are reversed on refund
type RefundOptions struct {
	RefundPaymentProcessorFee bool `json:"refund_payment_processor_fee"`
	KeepPlatformTip           bool `json:"keep_platform_tip"`
}

// TransactionFilter filters transaction listings
type TransactionFilter struct {
	CollectiveID int64
	Kinds        []TransactionKind
	Limit        int
	Offset       int
}

// Balance is the sum of net amounts of a collective in one currency
type Balance struct {
	Currency string `json:"currency" db:"currency"`
	Amount   int64  `json:"amount" db:"amount"`
}
