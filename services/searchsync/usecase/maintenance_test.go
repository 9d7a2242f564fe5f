package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLedgerEvent(t *testing.T) {
	uc, _, _, _ := newTestUC(t, models.SearchConfig{})
	uc.Start()

	err := uc.HandleLedgerEvent(context.Background(), &models.LedgerEvent{
		TransactionGroup: uuid.New(),
		TransactionIDs:   []int64{11, 12, 13},
	})

	require.NoError(t, err)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	require.Len(t, uc.queue, 3)
	assert.Equal(t, request(models.SearchRequestInsert, "transactions", 11), uc.queue[0])
}

func TestHandleLedgerEvent_NotStarted(t *testing.T) {
	uc, _, _, _ := newTestUC(t, models.SearchConfig{})

	err := uc.HandleLedgerEvent(context.Background(), &models.LedgerEvent{TransactionIDs: []int64{1}})

	assert.ErrorIs(t, err, models.ErrProcessorStopped)
}

func TestHandleRetry_CarriesAttempt(t *testing.T) {
	uc, _, _, _ := newTestUC(t, models.SearchConfig{})
	uc.Start()

	err := uc.HandleRetry(context.Background(), &models.SearchRetryMessage{
		Requests: []models.SearchRequest{request(models.SearchRequestUpdate, "orders", 4)},
		Attempt:  2,
	})

	require.NoError(t, err)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	require.Len(t, uc.queue, 1)
	assert.Equal(t, 2, uc.queue[0].Attempt)
}

func TestEnsureIndices(t *testing.T) {
	uc, _, mockIndexer, _ := newTestUC(t, models.SearchConfig{})

	mockIndexer.EXPECT().EnsureIndex(gomock.Any(), gomock.Any()).Return(nil).Times(len(uc.registry.All()))
	require.NoError(t, uc.EnsureIndices(context.Background()))
}

func TestEnsureIndices_StopsOnError(t *testing.T) {
	uc, _, mockIndexer, _ := newTestUC(t, models.SearchConfig{})

	mockIndexer.EXPECT().EnsureIndex(gomock.Any(), gomock.Any()).Return(errors.New("forbidden"))

	err := uc.EnsureIndices(context.Background())
	assert.ErrorContains(t, err, "failed to ensure index test_collectives")
}

func TestReindex(t *testing.T) {
	uc, mockRepo, mockIndexer, _ := newTestUC(t, models.SearchConfig{})
	expenses, _ := uc.registry.ByTable("expenses")

	full := make([]int64, reindexPageSize)
	for i := range full {
		full[i] = int64(i + 1)
	}

	gomock.InOrder(
		mockIndexer.EXPECT().EnsureIndex(gomock.Any(), expenses).Return(nil),
		mockRepo.EXPECT().ListIDs(gomock.Any(), expenses, int64(0), reindexPageSize).Return(full, nil),
		mockRepo.EXPECT().ListIDs(gomock.Any(), expenses, int64(reindexPageSize), reindexPageSize).Return([]int64{1001, 1002}, nil),
	)
	mockRepo.EXPECT().
		FetchDocuments(gomock.Any(), expenses, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *models.SearchAdapter, ids []int64) ([]models.SearchDocument, error) {
			docs := make([]models.SearchDocument, 0, len(ids))
			for _, id := range ids {
				docs = append(docs, models.SearchDocument{"id": float64(id)})
			}
			return docs, nil
		}).
		AnyTimes()
	mockIndexer.EXPECT().
		Bulk(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ops []models.BulkOperation) (*models.BulkResult, error) {
			return bulkOK(ops), nil
		}).
		AnyTimes()

	uc.Start()
	count, err := uc.Reindex(context.Background(), "expenses")

	require.NoError(t, err)
	assert.Equal(t, 1002, count)
	stats := uc.Stats()
	assert.Equal(t, int64(1002), stats.Indexed)
	assert.Zero(t, stats.QueueLength)
}

func TestReindex_UnknownIndex(t *testing.T) {
	uc, _, _, _ := newTestUC(t, models.SearchConfig{})
	uc.Start()

	_, err := uc.Reindex(context.Background(), "invoices")

	assert.ErrorIs(t, err, models.ErrUnknownIndex)
}

func TestReindex_ListError(t *testing.T) {
	uc, mockRepo, mockIndexer, _ := newTestUC(t, models.SearchConfig{})

	mockIndexer.EXPECT().EnsureIndex(gomock.Any(), gomock.Any()).Return(nil)
	mockRepo.EXPECT().ListIDs(gomock.Any(), gomock.Any(), int64(0), reindexPageSize).Return(nil, errors.New("relation does not exist"))

	uc.Start()
	count, err := uc.Reindex(context.Background(), "test_comments")

	assert.Error(t, err)
	assert.Zero(t, count)
}

func TestInstallAndRemoveTriggers(t *testing.T) {
	uc, mockRepo, _, _ := newTestUC(t, models.SearchConfig{})

	mockRepo.EXPECT().InstallTriggers(gomock.Any(), uc.registry.All()).Return(nil)
	mockRepo.EXPECT().RemoveTriggers(gomock.Any(), uc.registry.All()).Return(errors.New("permission denied"))

	assert.NoError(t, uc.InstallTriggers(context.Background()))
	assert.EqualError(t, uc.RemoveTriggers(context.Background()), "permission denied")
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name        string
		query       models.SearchQuery
		wantIndices []string
		wantFields  []string
		wantLimit   int
		wantErr     error
	}{
		{
			name:    "empty query",
			query:   models.SearchQuery{Query: "   "},
			wantErr: models.ErrInvalidInput,
		},
		{
			name:    "unknown index",
			query:   models.SearchQuery{Query: "hosting", Indices: []string{"invoices"}},
			wantErr: models.ErrUnknownIndex,
		},
		{
			name:        "selected indices",
			query:       models.SearchQuery{Query: " hosting ", Indices: []string{"expenses", "test_orders"}, Limit: 500},
			wantIndices: []string{"test_expenses", "test_orders"},
			wantFields:  []string{"description", "long_description", "tags"},
			wantLimit:   100,
		},
		{
			name:        "all indices",
			query:       models.SearchQuery{Query: "babel"},
			wantIndices: []string{"test_collectives", "test_transactions", "test_expenses", "test_orders", "test_comments", "test_updates", "test_host-applications"},
			wantLimit:   20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, mockIndexer, _ := newTestUC(t, models.SearchConfig{})
			expected := &models.SearchResult{Total: 1}

			if tt.wantErr == nil {
				mockIndexer.EXPECT().
					Search(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, q models.SearchQuery, fields []string) (*models.SearchResult, error) {
						assert.Equal(t, tt.wantIndices, q.Indices)
						assert.Equal(t, tt.wantLimit, q.Limit)
						assert.Equal(t, strings.TrimSpace(tt.query.Query), q.Query)
						if tt.wantFields != nil {
							assert.Equal(t, tt.wantFields, fields)
						} else {
							assert.Contains(t, fields, "name")
							assert.Contains(t, fields, "html")
						}
						return expected, nil
					})
			}

			result, err := uc.Search(context.Background(), tt.query)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, expected, result)
		})
	}
}
