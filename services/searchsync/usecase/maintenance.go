package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/searchsync/adapter"
)

const (
	reindexPageSize    = 1000
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// HandleRetry re-enqueues the requests of a retry message
func (uc *searchSyncUC) HandleRetry(ctx context.Context, msg *models.SearchRetryMessage) error {
	for _, req := range msg.Requests {
		req.Attempt = msg.Attempt
		if err := uc.AddToQueue(req); err != nil {
			return err
		}
	}

	logger.DebugCtx(ctx, "Re-enqueued search sync retry",
		logger.Int("requests", len(msg.Requests)),
		logger.Int("attempt", msg.Attempt))
	return nil
}

// HandleLedgerEvent enqueues the transactions of a ledger event for indexing
func (uc *searchSyncUC) HandleLedgerEvent(ctx context.Context, event *models.LedgerEvent) error {
	a, ok := uc.registry.ByIndex(adapter.IndexTransactions)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownIndex, adapter.IndexTransactions)
	}

	for _, id := range event.TransactionIDs {
		err := uc.AddToQueue(models.SearchRequest{
			Type:    models.SearchRequestInsert,
			Table:   a.Table,
			Payload: models.SearchRequestPayload{ID: id},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// EnsureIndices creates every missing index
func (uc *searchSyncUC) EnsureIndices(ctx context.Context) error {
	for _, a := range uc.registry.All() {
		if err := uc.indexer.EnsureIndex(ctx, a); err != nil {
			return fmt.Errorf("failed to ensure index %s: %w", a.Index, err)
		}
	}
	return nil
}

// Reindex enqueues every row of the index table and waits for them to be indexed
func (uc *searchSyncUC) Reindex(ctx context.Context, index string) (int, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "SearchSyncUC.Reindex", func(ctx context.Context) (int, error) {
		a, ok := uc.registry.ByIndex(index)
		if !ok {
			return 0, fmt.Errorf("%w: %s", models.ErrUnknownIndex, index)
		}
		if err := uc.indexer.EnsureIndex(ctx, a); err != nil {
			return 0, fmt.Errorf("failed to ensure index %s: %w", a.Index, err)
		}

		var (
			count   int
			afterID int64
		)
		for {
			ids, err := uc.repo.ListIDs(ctx, a, afterID, reindexPageSize)
			if err != nil {
				return count, err
			}
			for _, id := range ids {
				err := uc.AddToQueue(models.SearchRequest{
					Type:    models.SearchRequestInsert,
					Table:   a.Table,
					Payload: models.SearchRequestPayload{ID: id},
				})
				if err != nil {
					return count, err
				}
				count++
			}
			if len(ids) < reindexPageSize {
				break
			}
			afterID = ids[len(ids)-1]
		}

		if err := uc.Flush(ctx); err != nil {
			return count, fmt.Errorf("failed to flush reindex of %s: %w", a.Index, err)
		}

		logger.InfoCtx(ctx, "Reindexed search index",
			logger.String("index", a.Index),
			logger.Int("documents", count))
		return count, nil
	})
}

// InstallTriggers installs the change notification triggers on every indexed table
func (uc *searchSyncUC) InstallTriggers(ctx context.Context) error {
	if err := uc.repo.InstallTriggers(ctx, uc.registry.All()); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Search sync triggers installed", logger.Strings("indices", uc.registry.Indices()))
	return nil
}

// RemoveTriggers removes the change notification triggers
func (uc *searchSyncUC) RemoveTriggers(ctx context.Context) error {
	if err := uc.repo.RemoveTriggers(ctx, uc.registry.All()); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Search sync triggers removed")
	return nil
}

// Search runs a full-text query over the text fields of the requested indices, or all of them
func (uc *searchSyncUC) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error) {
	query.Query = strings.TrimSpace(query.Query)
	if query.Query == "" {
		return nil, fmt.Errorf("%w: empty search query", models.ErrInvalidInput)
	}

	adapters := uc.registry.All()
	if len(query.Indices) > 0 {
		adapters = make([]*models.SearchAdapter, 0, len(query.Indices))
		for _, index := range query.Indices {
			a, ok := uc.registry.ByIndex(index)
			if !ok {
				return nil, fmt.Errorf("%w: %s", models.ErrUnknownIndex, index)
			}
			adapters = append(adapters, a)
		}
	}

	query.Indices = make([]string, 0, len(adapters))
	var fields []string
	seen := make(map[string]bool)
	for _, a := range adapters {
		query.Indices = append(query.Indices, a.Index)
		for _, f := range a.TextFields {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}

	if query.Limit <= 0 {
		query.Limit = defaultSearchLimit
	}
	if query.Limit > maxSearchLimit {
		query.Limit = maxSearchLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	return uc.indexer.Search(ctx, query, fields)
}
