package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/opencollective/ledger/internal/pkg/circuitbreaker"
	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/pkg/retry"
	"github.com/opencollective/ledger/services/searchsync"
)

// NewIndexerGW creates the gateway of the configured search engine
func NewIndexerGW(cfg models.SearchConfig, breaker *circuitbreaker.CircuitBreaker, retrier *retry.Retrier) (searchsync.IndexerGW, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", constants.SearchEngineElasticsearch:
		client, err := NewElasticsearchClient(cfg, breaker, retrier)
		if err != nil {
			return nil, err
		}
		return NewElasticsearchGW(client), nil
	case constants.SearchEngineOpenSearch:
		client, err := NewOpenSearchClient(cfg, breaker, retrier)
		if err != nil {
			return nil, err
		}
		return NewOpenSearchGW(client), nil
	}
	return nil, fmt.Errorf("unknown search engine %q", cfg.Engine)
}

type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func responseError(op string, status int, body io.Reader) error {
	var eb errorBody
	if err := json.NewDecoder(body).Decode(&eb); err == nil && eb.Error.Type != "" {
		return fmt.Errorf("%s failed with status %d: %s: %s", op, status, eb.Error.Type, eb.Error.Reason)
	}
	return fmt.Errorf("%s failed with status %d", op, status)
}

// lost a race with another worker creating the same index
func alreadyExists(err error) bool {
	return strings.Contains(err.Error(), "resource_already_exists_exception")
}

func encode(v interface{}) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return &buf, nil
}

func mappingsBody(adapter *models.SearchAdapter) (io.Reader, error) {
	body, err := encode(map[string]interface{}{
		"mappings": map[string]interface{}{
			"dynamic":    false,
			"properties": adapter.Properties,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mappings: %w", err)
	}
	return body, nil
}

type bulkAction struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

type bulkResponse struct {
	Took   int                           `json:"took"`
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	Index  string `json:"_index"`
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// bulkBody encodes ops as NDJSON: an action line, then the document for index actions
func bulkBody(ops []models.BulkOperation) (io.Reader, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, op := range ops {
		action := map[models.BulkAction]bulkAction{op.Action: {Index: op.Index, ID: op.ID}}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if op.Action == models.BulkActionIndex {
			if err := enc.Encode(op.Document); err != nil {
				return nil, fmt.Errorf("failed to encode document %s/%s: %w", op.Index, op.ID, err)
			}
		}
	}
	return &buf, nil
}

func decodeBulk(r io.Reader) (*models.BulkResult, error) {
	var body bulkResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	result := &models.BulkResult{Took: body.Took, Errors: body.Errors, Items: make([]models.BulkItemResult, 0, len(body.Items))}
	for _, item := range body.Items {
		for action, r := range item {
			out := models.BulkItemResult{Action: models.BulkAction(action), Index: r.Index, ID: r.ID, Status: r.Status}
			if r.Error != nil {
				out.Error = r.Error.Type + ": " + r.Error.Reason
			}
			result.Items = append(result.Items, out)
		}
	}
	return result, nil
}

func queryBody(query map[string]interface{}) (io.Reader, error) {
	body, err := encode(map[string]interface{}{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return body, nil
}

func decodeDeleted(r io.Reader) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode delete by query response: %w", err)
	}
	return out.Deleted, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Index  string                 `json:"_index"`
			ID     string                 `json:"_id"`
			Score  float64                `json:"_score"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// multiMatchBody searches query over fields
func multiMatchBody(query string, fields []string) (io.Reader, error) {
	body, err := encode(map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":   query,
				"fields":  fields,
				"type":    "best_fields",
				"lenient": true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search: %w", err)
	}
	return body, nil
}

func decodeSearch(r io.Reader) (*models.SearchResult, error) {
	var out searchResponse
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	result := &models.SearchResult{Total: out.Hits.Total.Value, Hits: make([]models.SearchHit, 0, len(out.Hits.Hits))}
	for _, h := range out.Hits.Hits {
		result.Hits = append(result.Hits, models.SearchHit{Index: h.Index, ID: h.ID, Score: h.Score, Source: h.Source})
	}
	return result, nil
}
