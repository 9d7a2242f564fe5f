package models

import (
	"time"

	"github.com/google/uuid"
)

// SettlementStatus tracks a debt from creation to payment
type SettlementStatus string

const (
	SettlementOwed     SettlementStatus = "OWED"
	SettlementInvoiced SettlementStatus = "INVOICED"
	SettlementSettled  SettlementStatus = "SETTLED"
)

// TransactionSettlement records the settlement state of the debt pair (group, kind)
type TransactionSettlement struct {
	TransactionGroup uuid.UUID        `json:"transaction_group" db:"transaction_group"`
	Kind             TransactionKind  `json:"kind" db:"kind"`
	Status           SettlementStatus `json:"status" db:"status"`
	InvoiceID        *uuid.UUID       `json:"invoice_id,omitempty" db:"invoice_id"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// SettlementDebt is a settlement joined with the CREDIT row of its debt pair
type SettlementDebt struct {
	TransactionSettlement
	HostCollectiveID int64  `json:"host_collective_id" db:"host_collective_id"`
	Amount           int64  `json:"amount" db:"amount"`
	Currency         string `json:"currency" db:"currency"`
}

// SettlementFilter filters settlement listings
type SettlementFilter struct {
	TransactionGroup *uuid.UUID
	HostCollectiveID int64
	Status           SettlementStatus
	Kinds            []TransactionKind
	InvoiceID        *uuid.UUID
	CreatedBefore    *time.Time
	Limit            int
}

// SettlementInvoice groups the debts a host settles with the platform in one payment
type SettlementInvoice struct {
	InvoiceID        uuid.UUID        `json:"invoice_id"`
	HostCollectiveID int64            `json:"host_collective_id"`
	Totals           map[string]int64 `json:"totals"`
	Debts            int              `json:"debts"`
	CreatedAt        time.Time        `json:"created_at"`
}
