package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerPlan is a set of ledger writes applied in a single database transaction.
// Inserts that carry a RefundTransactionID also link the refunded row back to them.
type LedgerPlan struct {
	Updates     []*Transaction
	Inserts     []*Transaction
	Settlements []*TransactionSettlement
}

// Empty reports whether the plan has nothing to write
func (p *LedgerPlan) Empty() bool {
	return p == nil || (len(p.Updates) == 0 && len(p.Inserts) == 0 && len(p.Settlements) == 0)
}

// CollectiveIDs returns every collective touched by the plan
func (p *LedgerPlan) CollectiveIDs() []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	add := func(id int64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, t := range p.Updates {
		add(t.CollectiveID)
		add(t.FromCollectiveID)
	}
	for _, t := range p.Inserts {
		add(t.CollectiveID)
		add(t.FromCollectiveID)
	}
	return ids
}

// LedgerEvent is published after a plan touching transactions commits
type LedgerEvent struct {
	TransactionGroup uuid.UUID         `json:"transaction_group"`
	RefundedGroup    *uuid.UUID        `json:"refunded_group,omitempty"`
	Kinds            []TransactionKind `json:"kinds"`
	TransactionIDs   []int64           `json:"transaction_ids"`
	CollectiveIDs    []int64           `json:"collective_ids"`
	OccurredAt       time.Time         `json:"occurred_at"`
}

// SettlementEvent is published when settlement invoices change status
type SettlementEvent struct {
	InvoiceID        uuid.UUID        `json:"invoice_id"`
	HostCollectiveID int64            `json:"host_collective_id,omitempty"`
	Status           SettlementStatus `json:"status"`
	Totals           map[string]int64 `json:"totals,omitempty"`
	Count            int64            `json:"count"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

// SplitFilter selects groups for the legacy fee split
type SplitFilter struct {
	Since  *time.Time `json:"since,omitempty"`
	Until  *time.Time `json:"until,omitempty"`
	Limit  int        `json:"limit"`
	DryRun bool       `json:"dry_run"`
}

// SplitReport summarizes a legacy fee split run
type SplitReport struct {
	GroupsScanned int              `json:"groups_scanned" yaml:"groups_scanned"`
	GroupsSplit   int              `json:"groups_split" yaml:"groups_split"`
	PairsCreated  int              `json:"pairs_created" yaml:"pairs_created"`
	Skipped       int              `json:"skipped" yaml:"skipped"`
	Failed        []string         `json:"failed,omitempty" yaml:"failed,omitempty"`
	DryRun        bool             `json:"dry_run" yaml:"dry_run"`
	ByKind        map[string]int64 `json:"by_kind" yaml:"by_kind"`
}

// CheckFilter selects groups for the ledger invariant check
type CheckFilter struct {
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`
	Limit int        `json:"limit"`
}

// Violation is one broken ledger invariant
type Violation struct {
	TransactionGroup uuid.UUID `json:"transaction_group" yaml:"transaction_group"`
	TransactionID    int64     `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	Rule             string    `json:"rule" yaml:"rule"`
	Detail           string    `json:"detail" yaml:"detail"`
}

// CheckReport is the outcome of a ledger invariant check
type CheckReport struct {
	GroupsChecked int         `json:"groups_checked" yaml:"groups_checked"`
	Violations    []Violation `json:"violations" yaml:"violations"`
	CheckedAt     time.Time   `json:"checked_at" yaml:"checked_at"`
}

// OK reports whether no violation was found
func (r *CheckReport) OK() bool {
	return len(r.Violations) == 0
}
