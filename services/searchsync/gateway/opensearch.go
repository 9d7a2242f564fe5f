package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/opencollective/ledger/internal/pkg/circuitbreaker"
	httppkg "github.com/opencollective/ledger/internal/pkg/http"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/pkg/retry"
	"github.com/opencollective/ledger/services/searchsync"
	"github.com/opensearch-project/opensearch-go/v2"
)

// NewOpenSearchClient creates an OpenSearch client on the same resilient transport as NewElasticsearchClient
func NewOpenSearchClient(cfg models.SearchConfig, breaker *circuitbreaker.CircuitBreaker, retrier *retry.Retrier) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:    strings.Split(cfg.URL, ","),
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    httppkg.NewResilientTransport(nil, breaker, retrier, "OpenSearch"),
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	return client, nil
}

type openSearchGW struct {
	client *opensearch.Client
}

// NewOpenSearchGW creates a new OpenSearch cluster gateway
func NewOpenSearchGW(client *opensearch.Client) searchsync.IndexerGW {
	return &openSearchGW{client: client}
}

func (g *openSearchGW) EnsureIndex(ctx context.Context, adapter *models.SearchAdapter) error {
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

func (g *openSearchGW) Bulk(ctx context.Context, ops []models.BulkOperation) (*models.BulkResult, error) {
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

func (g *openSearchGW) DeleteByQuery(ctx context.Context, index string, query map[string]interface{}) (int64, error) {
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

func (g *openSearchGW) Search(ctx context.Context, query models.SearchQuery, fields []string) (*models.SearchResult, error) {
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

func (g *openSearchGW) Ping(ctx context.Context) error {
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
