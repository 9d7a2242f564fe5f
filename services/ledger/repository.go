package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
)

// LedgerRepo defines the interface for ledger data access operations
// go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/opencollective/ledger/services/ledger LedgerRepo
type LedgerRepo interface {
	GetTransactionGroup(ctx context.Context, group uuid.UUID) ([]*models.Transaction, error)
	GetTransactionsByIDs(ctx context.Context, ids []int64) ([]*models.Transaction, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
	ApplyPlan(ctx context.Context, plan *models.LedgerPlan) error

	GetBalances(ctx context.Context, collectiveID int64) ([]models.Balance, error)
	GetCachedBalances(ctx context.Context, collectiveID int64) ([]models.Balance, bool, error)
	CacheBalances(ctx context.Context, collectiveID int64, balances []models.Balance, ttl time.Duration) error
	InvalidateBalances(ctx context.Context, collectiveIDs ...int64) error

	FindLegacyFeeGroups(ctx context.Context, filter models.SplitFilter) ([]uuid.UUID, error)
	ListGroupsForCheck(ctx context.Context, filter models.CheckFilter) ([]uuid.UUID, error)

	ListSettlements(ctx context.Context, filter models.SettlementFilter) ([]*models.SettlementDebt, error)
	InvoiceSettlements(ctx context.Context, debts []*models.SettlementDebt, invoiceID uuid.UUID) (int64, error)
	SettleInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	ListHostsWithOwedSettlements(ctx context.Context, before time.Time) ([]int64, error)

	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}
