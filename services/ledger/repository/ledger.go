package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/opencollective/ledger/internal/pkg/database"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
)

const transactionColumns = `
	id, uuid, kind, type, transaction_group,
	collective_id, from_collective_id, host_collective_id, order_id, expense_id,
	amount, currency, host_currency, host_currency_fx_rate, amount_in_host_currency,
	host_fee_in_host_currency, platform_fee_in_host_currency,
	payment_processor_fee_in_host_currency, tax_amount,
	net_amount_in_collective_currency,
	is_refund, refund_transaction_id, is_debt, description, created_at`

const insertTransactionQuery = `
	INSERT INTO transactions (
		uuid, kind, type, transaction_group,
		collective_id, from_collective_id, host_collective_id, order_id, expense_id,
		amount, currency, host_currency, host_currency_fx_rate, amount_in_host_currency,
		host_fee_in_host_currency, platform_fee_in_host_currency,
		payment_processor_fee_in_host_currency, tax_amount,
		net_amount_in_collective_currency,
		is_refund, refund_transaction_id, is_debt, description, created_at
	) VALUES (
		:uuid, :kind, :type, :transaction_group,
		:collective_id, :from_collective_id, :host_collective_id, :order_id, :expense_id,
		:amount, :currency, :host_currency, :host_currency_fx_rate, :amount_in_host_currency,
		:host_fee_in_host_currency, :platform_fee_in_host_currency,
		:payment_processor_fee_in_host_currency, :tax_amount,
		:net_amount_in_collective_currency,
		:is_refund, :refund_transaction_id, :is_debt, :description, :created_at
	)
	RETURNING id`

// split only rewrites amounts and fee columns
const updateTransactionQuery = `
	UPDATE transactions SET
		amount = :amount,
		amount_in_host_currency = :amount_in_host_currency,
		host_fee_in_host_currency = :host_fee_in_host_currency,
		platform_fee_in_host_currency = :platform_fee_in_host_currency,
		payment_processor_fee_in_host_currency = :payment_processor_fee_in_host_currency,
		tax_amount = :tax_amount,
		net_amount_in_collective_currency = :net_amount_in_collective_currency
	WHERE id = :id`

const linkRefundQuery = `
	UPDATE transactions SET refund_transaction_id = $1
	WHERE id = $2 AND refund_transaction_id IS NULL`

const upsertSettlementQuery = `
	INSERT INTO transaction_settlements (
		transaction_group, kind, status, invoice_id, created_at, updated_at
	) VALUES (
		:transaction_group, :kind, :status, :invoice_id, :created_at, :updated_at
	)
	ON CONFLICT (transaction_group, kind) DO UPDATE SET
		status = EXCLUDED.status,
		invoice_id = EXCLUDED.invoice_id,
		updated_at = EXCLUDED.updated_at`

// LedgerRepo implements the ledger repository interface
type LedgerRepo struct {
	cfg         *models.Config
	db          *sqlx.DB
	redisClient *database.RedisClient
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(
	cfg *models.Config,
	db *sqlx.DB,
	redisClient *database.RedisClient,
) *LedgerRepo {
	return &LedgerRepo{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
	}
}

// limitArg maps a zero limit to NULL, which Postgres reads as no limit
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}

// GetTransactionGroup returns every row of a group in id order
func (r *LedgerRepo) GetTransactionGroup(ctx context.Context, group uuid.UUID) ([]*models.Transaction, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transactions", "SELECT")()

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_group = $1 AND deleted_at IS NULL
		ORDER BY id`

	var rows []*models.Transaction
	if err := r.db.SelectContext(ctx, &rows, query, group); err != nil {
		return nil, fmt.Errorf("failed to get transaction group: %w", err)
	}
	return rows, nil
}

// GetTransactionsByIDs returns the rows with the given ids
func (r *LedgerRepo) GetTransactionsByIDs(ctx context.Context, ids []int64) ([]*models.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer nrpkg.StartDatastoreSegment(ctx, "transactions", "SELECT")()

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ANY($1)
		ORDER BY id`

	var rows []*models.Transaction
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return rows, nil
}

// ListTransactions lists the rows of a collective, newest first
func (r *LedgerRepo) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transactions", "SELECT")()

	kinds := make([]string, 0, len(filter.Kinds))
	for _, k := range filter.Kinds {
		kinds = append(kinds, string(k))
	}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE collective_id = $1 AND deleted_at IS NULL
			AND (cardinality($2::text[]) = 0 OR kind = ANY($2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows := []*models.Transaction{}
	if err := r.db.SelectContext(ctx, &rows, query, filter.CollectiveID, pq.Array(kinds), limitArg(filter.Limit), filter.Offset); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rows, nil
}

// ApplyPlan writes a plan in one database transaction. Refund inserts are
// linked back to the row they refund; a row refunded concurrently aborts the
// whole plan with ErrAlreadyRefunded.
func (r *LedgerRepo) ApplyPlan(ctx context.Context, plan *models.LedgerPlan) error {
	if plan.Empty() {
		return nil
	}
	defer nrpkg.StartDatastoreSegment(ctx, "transactions", "APPLY")()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range plan.Updates {
		if _, err := tx.NamedExecContext(ctx, updateTransactionQuery, t); err != nil {
			return fmt.Errorf("failed to update transaction %d: %w", t.ID, err)
		}
	}

	for _, t := range plan.Inserts {
		if t.RefundOf != nil {
			target := t.RefundOf.ID
			t.RefundTransactionID = &target
		}

		query, args, err := tx.BindNamed(insertTransactionQuery, t)
		if err != nil {
			return fmt.Errorf("failed to bind transaction: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&t.ID); err != nil {
			return fmt.Errorf("failed to insert %s transaction: %w", t.Kind, err)
		}

		if t.RefundOf == nil {
			continue
		}
		res, err := tx.ExecContext(ctx, linkRefundQuery, t.ID, t.RefundOf.ID)
		if err != nil {
			return fmt.Errorf("failed to link refund of transaction %d: %w", t.RefundOf.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to link refund of transaction %d: %w", t.RefundOf.ID, err)
		} else if n == 0 {
			return fmt.Errorf("%w: transaction %d", models.ErrAlreadyRefunded, t.RefundOf.ID)
		}
		t.RefundOf.RefundTransactionID = &t.ID
	}

	for _, s := range plan.Settlements {
		if _, err := tx.NamedExecContext(ctx, upsertSettlementQuery, s); err != nil {
			return fmt.Errorf("failed to upsert %s settlement: %w", s.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger plan: %w", err)
	}
	return nil
}

// GetBalances sums the net amounts of a collective per currency
func (r *LedgerRepo) GetBalances(ctx context.Context, collectiveID int64) ([]models.Balance, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transactions", "SUM")()

	query := `
		SELECT currency, COALESCE(SUM(net_amount_in_collective_currency), 0) AS amount
		FROM transactions
		WHERE collective_id = $1 AND deleted_at IS NULL
		GROUP BY currency
		ORDER BY currency`

	balances := []models.Balance{}
	if err := r.db.SelectContext(ctx, &balances, query, collectiveID); err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	return balances, nil
}

func timeRange(conds []string, args []interface{}, since, until *time.Time) ([]string, []interface{}) {
	if since != nil {
		args = append(args, *since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if until != nil {
		args = append(args, *until)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}
	return conds, args
}

func (r *LedgerRepo) selectGroups(ctx context.Context, conds []string, args []interface{}, limit int) ([]uuid.UUID, error) {
	args = append(args, limitArg(limit))
	query := fmt.Sprintf(`
		SELECT transaction_group
		FROM transactions
		WHERE %s
		GROUP BY transaction_group
		ORDER BY MIN(id)
		LIMIT $%d`, strings.Join(conds, " AND "), len(args))

	groups := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, err
	}
	return groups, nil
}

// FindLegacyFeeGroups returns groups with rows still carrying legacy fee columns.
// Refund and refunded rows are left out.
func (r *LedgerRepo) FindLegacyFeeGroups(ctx context.Context, filter models.SplitFilter) ([]uuid.UUID, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transactions", "SELECT")()

	conds := []string{
		"deleted_at IS NULL",
		"is_refund = FALSE",
		"refund_transaction_id IS NULL",
		"(host_fee_in_host_currency <> 0 OR platform_fee_in_host_currency <> 0 OR payment_processor_fee_in_host_currency <> 0)",
	}
	conds, args := timeRange(conds, nil, filter.Since, filter.Until)

	groups, err := r.selectGroups(ctx, conds, args, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find legacy fee groups: %w", err)
	}
	return groups, nil
}

// ListGroupsForCheck returns the groups created in the filter window
func (r *LedgerRepo) ListGroupsForCheck(ctx context.Context, filter models.CheckFilter) ([]uuid.UUID, error) {
	defer nrpkg.StartDatastoreSegment(ctx, "transactions", "SELECT")()

	conds, args := timeRange([]string{"deleted_at IS NULL"}, nil, filter.Since, filter.Until)

	groups, err := r.selectGroups(ctx, conds, args, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
