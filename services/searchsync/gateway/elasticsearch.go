package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/opencollective/ledger/internal/pkg/circuitbreaker"
	httppkg "github.com/opencollective/ledger/internal/pkg/http"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/pkg/retry"
	"github.com/opencollective/ledger/services/searchsync"
)

// NewElasticsearchClient creates a client whose requests go through the breaker and retrier.
// The client's own retries are disabled.
func NewElasticsearchClient(cfg models.SearchConfig, breaker *circuitbreaker.CircuitBreaker, retrier *retry.Retrier) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    strings.Split(cfg.URL, ","),
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    httppkg.NewResilientTransport(nil, breaker, retrier, "Elasticsearch"),
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	return client, nil
}

type elasticsearchGW struct {
	client *elasticsearch.Client
}

// NewElasticsearchGW creates a new Elasticsearch cluster gateway
func NewElasticsearchGW(client *elasticsearch.Client) searchsync.IndexerGW {
	return &elasticsearchGW{client: client}
}

// EnsureIndex creates the index with the adapter mappings unless it exists
func (g *elasticsearchGW) EnsureIndex(ctx context.Context, adapter *models.SearchAdapter) error {
	res, err := g.client.Indices.Exists([]string{adapter.Index}, g.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", adapter.Index, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("failed to check index %s: status %d", adapter.Index, res.StatusCode)
	}

	body, err := mappingsBody(adapter)
	if err != nil {
		return err
	}

	res, err = g.client.Indices.Create(adapter.Index,
		g.client.Indices.Create.WithBody(body),
		g.client.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", adapter.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := responseError("create index "+adapter.Index, res.StatusCode, res.Body)
		if alreadyExists(err) {
			return nil
		}
		return err
	}
	return nil
}

// Bulk sends ops as one NDJSON bulk request. Item failures are reported in the result, not as an error.
func (g *elasticsearchGW) Bulk(ctx context.Context, ops []models.BulkOperation) (*models.BulkResult, error) {
	if len(ops) == 0 {
		return &models.BulkResult{}, nil
	}

	body, err := bulkBody(ops)
	if err != nil {
		return nil, err
	}

	res, err := g.client.Bulk(body, g.client.Bulk.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("bulk request", res.StatusCode, res.Body)
	}
	return decodeBulk(res.Body)
}

// DeleteByQuery deletes the documents of index matching query and returns how many were deleted
func (g *elasticsearchGW) DeleteByQuery(ctx context.Context, index string, query map[string]interface{}) (int64, error) {
	body, err := queryBody(query)
	if err != nil {
		return 0, err
	}

	res, err := g.client.DeleteByQuery([]string{index}, body,
		g.client.DeleteByQuery.WithContext(ctx),
		g.client.DeleteByQuery.WithConflicts("proceed"),
		g.client.DeleteByQuery.WithIgnoreUnavailable(true))
	if err != nil {
		return 0, fmt.Errorf("delete by query on %s failed: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, responseError("delete by query on "+index, res.StatusCode, res.Body)
	}
	return decodeDeleted(res.Body)
}

// Search runs a multi-match of query over fields in the query indices
func (g *elasticsearchGW) Search(ctx context.Context, query models.SearchQuery, fields []string) (*models.SearchResult, error) {
	body, err := multiMatchBody(query.Query, fields)
	if err != nil {
		return nil, err
	}

	res, err := g.client.Search(
		g.client.Search.WithContext(ctx),
		g.client.Search.WithIndex(query.Indices...),
		g.client.Search.WithBody(body),
		g.client.Search.WithFrom(query.Offset),
		g.client.Search.WithSize(query.Limit),
		g.client.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("search", res.StatusCode, res.Body)
	}
	return decodeSearch(res.Body)
}

// Ping checks the cluster is reachable
func (g *elasticsearchGW) Ping(ctx context.Context) error {
	res, err := g.client.Ping(g.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search cluster unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search cluster ping failed with status %d", res.StatusCode)
	}
	return nil
}
