package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/utils"
	"github.com/opencollective/ledger/services/searchsync"
)

// SearchHandler handles HTTP requests for search and the sync processor
type SearchHandler struct {
	searchUC searchsync.SearchSyncUC
}

// NewSearchHandler creates a new search HTTP handler
func NewSearchHandler(searchUC searchsync.SearchSyncUC) *SearchHandler {
	return &SearchHandler{
		searchUC: searchUC,
	}
}

// ReindexResponse reports how many rows were queued for indexing
type ReindexResponse struct {
	Index     string `json:"index"`
	Documents int    `json:"documents"`
}

// Search runs a full-text query. index may be repeated or comma separated.
func (h *SearchHandler) Search(c echo.Context) error {
	var (
		query   models.SearchQuery
		indices []string
	)
	err := echo.QueryParamsBinder(c).
		String("q", &query.Query).
		Strings("index", &indices).
		Int("limit", &query.Limit).
		Int("offset", &query.Offset).
		BindError()
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid query: "+err.Error())
	}
	for _, index := range indices {
		for _, name := range strings.Split(index, ",") {
			if name = strings.TrimSpace(name); name != "" {
				query.Indices = append(query.Indices, name)
			}
		}
	}

	result, err := h.searchUC.Search(c.Request().Context(), query)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Stats returns the batch processor counters
func (h *SearchHandler) Stats(c echo.Context) error {
	return utils.SuccessResponse(c, http.StatusOK, "", h.searchUC.Stats())
}

// Flush processes the queued requests and waits for them
func (h *SearchHandler) Flush(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.searchUC.Flush(ctx); err != nil {
		logger.WarnCtx(ctx, "Failed to flush search sync queue", logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Queue flushed", h.searchUC.Stats())
}

// EnsureIndices creates the missing indices
func (h *SearchHandler) EnsureIndices(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.searchUC.EnsureIndices(ctx); err != nil {
		logger.ErrorCtx(ctx, "Failed to ensure search indices", logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Indices ready", nil)
}

// Reindex queues every row of an index table
func (h *SearchHandler) Reindex(c echo.Context) error {
	index := c.Param("index")
	ctx := c.Request().Context()

	count, err := h.searchUC.Reindex(ctx, index)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to reindex",
			logger.String("index", index),
			logger.Int("documents", count),
			logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Reindexed", ReindexResponse{Index: index, Documents: count})
}
