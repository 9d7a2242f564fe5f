package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
)

// settlements are joined with the CREDIT row of their debt pair. A refund
// debt runs the other way, so its amount counts against the host.
const settlementDebtQuery = `
	SELECT
		s.transaction_group, s.kind, s.status, s.invoice_id, s.created_at, s.updated_at,
		COALESCE(t.host_collective_id, t.collective_id) AS host_collective_id,
		CASE WHEN t.is_refund THEN -t.amount ELSE t.amount END AS amount,
		t.currency
	FROM transaction_settlements s
	JOIN transactions t
		ON t.transaction_group = s.transaction_group
		AND t.kind = s.kind
		AND t.type = 'CREDIT'
		AND t.is_debt
		AND t.deleted_at IS NULL`

// ListSettlements lists settlements matching filter, oldest first
func (r *LedgerRepo) ListSettlements(ctx context.Context, filter models.SettlementFilter) ([]*models.SettlementDebt, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transaction_settlements", "SELECT")()

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.TransactionGroup != nil {
		conds = append(conds, "s.transaction_group = "+arg(*filter.TransactionGroup))
	}
	if filter.HostCollectiveID != 0 {
		conds = append(conds, "COALESCE(t.host_collective_id, t.collective_id) = "+arg(filter.HostCollectiveID))
	}
	if filter.Status != "" {
		conds = append(conds, "s.status = "+arg(filter.Status))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			kinds = append(kinds, string(k))
		}
		conds = append(conds, "s.kind = ANY("+arg(pq.Array(kinds))+")")
	}
	if filter.InvoiceID != nil {
		conds = append(conds, "s.invoice_id = "+arg(*filter.InvoiceID))
	}
	if filter.CreatedBefore != nil {
		conds = append(conds, "s.created_at < "+arg(*filter.CreatedBefore))
	}

	query := settlementDebtQuery
	if len(conds) > 0 {
		query += "\n\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\tORDER BY s.created_at, s.transaction_group, s.kind"
	if filter.Limit > 0 {
		query += "\n\tLIMIT " + arg(filter.Limit)
	}

	debts := []*models.SettlementDebt{}
	if err := r.db.SelectContext(ctx, &debts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return debts, nil
}

// InvoiceSettlements moves the still OWED debts to INVOICED under invoiceID
func (r *LedgerRepo) InvoiceSettlements(ctx context.Context, debts []*models.SettlementDebt, invoiceID uuid.UUID) (int64, error) {
	if len(debts) == 0 {
		return 0, nil
	}
	defer nrpkg.StartDatastoreSegment(ctx, "transaction_settlements", "UPDATE")()

	groups := make([]string, len(debts))
	kinds := make([]string, len(debts))
	for i, d := range debts {
		groups[i] = d.TransactionGroup.String()
		kinds[i] = string(d.Kind)
	}

	query := `
		UPDATE transaction_settlements AS s
		SET status = $1, invoice_id = $2, updated_at = NOW()
		FROM unnest($3::uuid[], $4::text[]) AS d(transaction_group, kind)
		WHERE s.transaction_group = d.transaction_group
			AND s.kind = d.kind
			AND s.status = $5`

	res, err := r.db.ExecContext(ctx, query,
		models.SettlementInvoiced, invoiceID, pq.Array(groups), pq.Array(kinds), models.SettlementOwed)
	if err != nil {
		return 0, fmt.Errorf("failed to invoice settlements: %w", err)
	}
	return res.RowsAffected()
}

// SettleInvoice moves the INVOICED debts of an invoice to SETTLED
func (r *LedgerRepo) SettleInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transaction_settlements", "UPDATE")()

	query := `
		UPDATE transaction_settlements
		SET status = $1, updated_at = NOW()
		WHERE invoice_id = $2 AND status = $3`

	res, err := r.db.ExecContext(ctx, query, models.SettlementSettled, invoiceID, models.SettlementInvoiced)
	if err != nil {
		return 0, fmt.Errorf("failed to settle invoice: %w", err)
	}
	return res.RowsAffected()
}

// ListHostsWithOwedSettlements returns the hosts owing debts created before the given time
func (r *LedgerRepo) ListHostsWithOwedSettlements(ctx context.Context, before time.Time) ([]int64, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transaction_settlements", "SELECT")()

	query := `
		SELECT DISTINCT COALESCE(t.host_collective_id, t.collective_id) AS host_collective_id
		FROM transaction_settlements s
		JOIN transactions t
			ON t.transaction_group = s.transaction_group
			AND t.kind = s.kind
			AND t.type = 'CREDIT'
			AND t.is_debt
			AND t.deleted_at IS NULL
		WHERE s.status = $1 AND s.created_at < $2
		ORDER BY host_collective_id`

	hosts := []int64{}
	if err := r.db.SelectContext(ctx, &hosts, query, models.SettlementOwed, before); err != nil {
		return nil, fmt.Errorf("failed to list hosts with owed settlements: %w", err)
	}
	return hosts, nil
}
