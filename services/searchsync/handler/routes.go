package handler

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/middleware"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/searchsync"
	httpHandler "github.com/opencollective/ledger/services/searchsync/handler/http"
)

const defaultRateLimitPeriod = time.Minute

// Handler combines the HTTP handlers of the search sync service
type Handler struct {
	searchHTTP  *httpHandler.SearchHandler
	cfg         *models.Config
	redisClient *redis.Client
}

// NewHandler creates a new combined handler
func NewHandler(searchUC searchsync.SearchSyncUC, cfg *models.Config, redisClient *redis.Client) *Handler {
	return &Handler{
		searchHTTP:  httpHandler.NewSearchHandler(searchUC),
		cfg:         cfg,
		redisClient: redisClient,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(e *echo.Echo, apiKeyMiddleware *middleware.APIKeyMiddleware) {
	period := time.Duration(h.cfg.Search.RateLimitPeriod) * time.Second
	if period <= 0 {
		period = defaultRateLimitPeriod
	}

	// Public search, rate limited per client IP
	v1 := e.Group("/v1")
	v1.GET("/search", nrpkg.TraceHandler("SearchSync.Search", h.searchHTTP.Search),
		middleware.IPRateLimiter(constants.ResourceSearch, h.cfg.Search.RateLimit, period, h.redisClient))

	internal := e.Group("/internal", apiKeyMiddleware.ValidateAPIKey(middleware.ClientSearchSync, middleware.ClientOperator))
	internal.GET("/stats", nrpkg.TraceHandler("SearchSync.Stats", h.searchHTTP.Stats))
	internal.POST("/flush", nrpkg.TraceHandler("SearchSync.Flush", h.searchHTTP.Flush))
	internal.POST("/indices", nrpkg.TraceHandler("SearchSync.EnsureIndices", h.searchHTTP.EnsureIndices))
	internal.POST("/reindex/:index", nrpkg.TraceHandler("SearchSync.Reindex", h.searchHTTP.Reindex))
}
