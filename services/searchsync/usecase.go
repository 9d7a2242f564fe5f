package searchsync

import (
	"context"

	"github.com/opencollective/ledger/internal/pkg/models"
)

// SearchSyncUC defines the interface for the search sync batch processor and its maintenance operations
// go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/opencollective/ledger/services/searchsync SearchSyncUC
type SearchSyncUC interface {
	Start()
	AddToQueue(req models.SearchRequest) error
	Flush(ctx context.Context) error
	FlushAndClose(ctx context.Context) error
	Stats() models.SearchSyncStats

	HandleRetry(ctx context.Context, msg *models.SearchRetryMessage) error
	HandleLedgerEvent(ctx context.Context, event *models.LedgerEvent) error

	EnsureIndices(ctx context.Context) error
	Reindex(ctx context.Context, index string) (int, error)
	InstallTriggers(ctx context.Context) error
	RemoveTriggers(ctx context.Context) error
	Search(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error)
}
