package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
)

// LedgerUC defines the interface for ledger business logic
// go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/opencollective/ledger/services/ledger LedgerUC
type LedgerUC interface {
	RecordContribution(ctx context.Context, input *models.ContributionInput) ([]*models.Transaction, error)
	RecordExpensePayment(ctx context.Context, input *models.ExpensePaymentInput) ([]*models.Transaction, error)
	RefundTransactionGroup(ctx context.Context, group uuid.UUID, opts models.RefundOptions) ([]*models.Transaction, error)

	GetTransactionGroup(ctx context.Context, group uuid.UUID) ([]*models.Transaction, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
	GetBalance(ctx context.Context, collectiveID int64) ([]models.Balance, error)

	SplitLegacyFees(ctx context.Context, filter models.SplitFilter) (*models.SplitReport, error)
	CheckLedger(ctx context.Context, filter models.CheckFilter) (*models.CheckReport, error)

	ListSettlements(ctx context.Context, filter models.SettlementFilter) ([]*models.SettlementDebt, error)
	InvoiceHostSettlements(ctx context.Context, hostCollectiveID int64, until time.Time) (*models.SettlementInvoice, error)
	MarkInvoiceSettled(ctx context.Context, invoiceID uuid.UUID) (*models.SettlementInvoice, error)
	RunMonthlySettlement(ctx context.Context, now time.Time) ([]*models.SettlementInvoice, error)
}
