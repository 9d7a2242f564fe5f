package searchsync

import (
	"context"
	"time"

	"github.com/opencollective/ledger/internal/pkg/models"
)

// IndexerGW defines the interface for the search cluster
// go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/opencollective/ledger/services/searchsync IndexerGW,RetryGW
type IndexerGW interface {
	EnsureIndex(ctx context.Context, adapter *models.SearchAdapter) error
	Bulk(ctx context.Context, ops []models.BulkOperation) (*models.BulkResult, error)
	DeleteByQuery(ctx context.Context, index string, query map[string]interface{}) (int64, error)
	Search(ctx context.Context, query models.SearchQuery, fields []string) (*models.SearchResult, error)
	Ping(ctx context.Context) error
}

// RetryGW publishes failed requests for a later attempt
type RetryGW interface {
	PublishRetry(ctx context.Context, msg *models.SearchRetryMessage, delay time.Duration) error
}
