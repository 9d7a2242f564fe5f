package ledger

import (
	"context"

	"github.com/opencollective/ledger/internal/pkg/models"
)

// LedgerGW publishes ledger events
// go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/opencollective/ledger/services/ledger LedgerGW
type LedgerGW interface {
	PublishTransactionsRecorded(ctx context.Context, event *models.LedgerEvent) error
	PublishTransactionsRefunded(ctx context.Context, event *models.LedgerEvent) error
	PublishSettlementEvent(ctx context.Context, event *models.SettlementEvent) error
}
