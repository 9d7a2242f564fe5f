package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openSearchRoot = `{"name":"node-1","cluster_name":"search","version":{"distribution":"opensearch","number":"2.11.0"},"tagline":"The OpenSearch Project: https://opensearch.org/"}`

// newFakeOpenSearch answers without the X-Elastic-Product header, like a real OpenSearch node
func newFakeOpenSearch(t *testing.T) (*fakeCluster, string) {
	fc, url := startFakeCluster(t, nil)
	fc.on("GET /", http.StatusOK, openSearchRoot)
	return fc, url
}

func newOpenSearchGW(t *testing.T, url string) *openSearchGW {
	breaker, retrier := testResilience()
	client, err := NewOpenSearchClient(models.SearchConfig{URL: url}, breaker, retrier)
	require.NoError(t, err)
	return NewOpenSearchGW(client).(*openSearchGW)
}

func TestOpenSearch_Ping(t *testing.T) {
	fc, url := newFakeOpenSearch(t)
	gw := newOpenSearchGW(t, url)
	fc.on("HEAD /", http.StatusOK, "")

	assert.NoError(t, gw.Ping(context.Background()))
}

func TestOpenSearch_RejectedByElasticsearchClient(t *testing.T) {
	fc, url := newFakeOpenSearch(t)
	fc.on("HEAD /", http.StatusOK, "")
	breaker, retrier := testResilience()
	client, err := NewElasticsearchClient(models.SearchConfig{URL: url}, breaker, retrier)
	require.NoError(t, err)

	assert.Error(t, NewElasticsearchGW(client).Ping(context.Background()))
	assert.NoError(t, newOpenSearchGW(t, url).Ping(context.Background()))
}

func TestOpenSearch_EnsureIndex(t *testing.T) {
	fc, url := newFakeOpenSearch(t)
	gw := newOpenSearchGW(t, url)
	fc.on("HEAD /test_expenses", http.StatusNotFound, "")
	fc.on("PUT /test_expenses", http.StatusOK, `{"acknowledged":true}`)

	require.NoError(t, gw.EnsureIndex(context.Background(), testAdapter()))

	req := fc.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, false, body["mappings"]["dynamic"])
}

func TestOpenSearch_Bulk(t *testing.T) {
	fc, url := newFakeOpenSearch(t)
	gw := newOpenSearchGW(t, url)
	fc.on("POST /_bulk", http.StatusOK, `{
		"took": 3,
		"errors": false,
		"items": [{"index": {"_index": "test_expenses", "_id": "1", "status": 201}}]
	}`)

	result, err := gw.Bulk(context.Background(), []models.BulkOperation{
		{Action: models.BulkActionIndex, Index: "test_expenses", ID: "1", Document: models.SearchDocument{"id": 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Took)
	require.Len(t, result.Items, 1)
	assert.False(t, result.Items[0].Failed())

	lines := strings.Split(strings.TrimSpace(fc.last(t).Body), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"index":{"_index":"test_expenses","_id":"1"}}`, lines[0])
}

func TestOpenSearch_SearchAndDelete(t *testing.T) {
	fc, url := newFakeOpenSearch(t)
	gw := newOpenSearchGW(t, url)
	fc.on("POST /test_expenses/_search", http.StatusOK, `{
		"hits": {"total": {"value": 1}, "hits": [{"_index": "test_expenses", "_id": "5", "_score": 1.5, "_source": {"description": "Hosting"}}]}
	}`)
	fc.on("POST /test_expenses/_delete_by_query", http.StatusOK, `{"deleted": 2}`)

	result, err := gw.Search(context.Background(), models.SearchQuery{Query: "hosting", Indices: []string{"test_expenses"}, Limit: 5}, []string{"description"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "5", result.Hits[0].ID)

	deleted, err := gw.DeleteByQuery(context.Background(), "test_expenses", map[string]interface{}{"match_all": map[string]interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestNewIndexerGW(t *testing.T) {
	breaker, retrier := testResilience()

	gw, err := NewIndexerGW(models.SearchConfig{URL: "http://localhost:9200"}, breaker, retrier)
	require.NoError(t, err)
	assert.IsType(t, &elasticsearchGW{}, gw)

	gw, err = NewIndexerGW(models.SearchConfig{Engine: "OpenSearch", URL: "http://localhost:9200"}, breaker, retrier)
	require.NoError(t, err)
	assert.IsType(t, &openSearchGW{}, gw)

	_, err = NewIndexerGW(models.SearchConfig{Engine: "solr", URL: "http://localhost:9200"}, breaker, retrier)
	assert.ErrorContains(t, err, "unknown search engine")
}
