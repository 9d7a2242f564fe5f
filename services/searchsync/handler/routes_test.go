package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/middleware"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/services/searchsync/mocks"
	"github.com/stretchr/testify/assert"
)

func setupRoutes(t *testing.T, rateLimit int) (*echo.Echo, *mocks.MockSearchSyncUC, *miniredis.Miniredis) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mockUC := mocks.NewMockSearchSyncUC(ctrl)
	cfg := &models.Config{Search: models.SearchConfig{RateLimit: rateLimit, RateLimitPeriod: 60}}
	h := NewHandler(mockUC, cfg, client)

	e := echo.New()
	h.RegisterRoutes(e, middleware.NewAPIKeyMiddleware(&models.APIKeyConfig{
		SearchSync: "sync-key",
		Operator:   "operator-key",
		Ledger:     "ledger-key",
	}))
	return e, mockUC, mr
}

func serve(e *echo.Echo, method, target, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.7:4321"
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes_SearchIsRateLimited(t *testing.T) {
	e, mockUC, mr := setupRoutes(t, 2)

	mockUC.EXPECT().Search(gomock.Any(), gomock.Any()).Return(&models.SearchResult{}, nil).Times(2)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/search?q=a", "").Code)
	rec := serve(e, http.MethodGet, "/v1/search?q=a", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/v1/search?q=a", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("rate:limit:search:192.0.2.7"))
}

func TestRegisterRoutes_InternalRequiresKey(t *testing.T) {
	e, mockUC, _ := setupRoutes(t, 0)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/internal/stats", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/internal/stats", "ledger-key").Code)

	mockUC.EXPECT().Stats().Return(models.SearchSyncStats{}).Times(2)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/internal/stats", "sync-key").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/internal/stats", "operator-key").Code)

	mockUC.EXPECT().Reindex(gomock.Any(), "orders").Return(5, nil)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/internal/reindex/orders", "operator-key").Code)
}
