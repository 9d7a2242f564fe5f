package searchsync

import (
	"context"

	"github.com/opencollective/ledger/internal/pkg/models"
)

// SearchRepo defines the interface for reading indexed rows and managing the sync triggers
// go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/opencollective/ledger/services/searchsync SearchRepo
type SearchRepo interface {
	FetchDocuments(ctx context.Context, adapter *models.SearchAdapter, ids []int64) ([]models.SearchDocument, error)
	ListIDs(ctx context.Context, adapter *models.SearchAdapter, afterID int64, limit int) ([]int64, error)
	InstallTriggers(ctx context.Context, adapters []*models.SearchAdapter) error
	RemoveTriggers(ctx context.Context, adapters []*models.SearchAdapter) error
}
