package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/opencollective/ledger/internal/pkg/middleware"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/ledger"
	cronHandler "github.com/opencollective/ledger/services/ledger/handler/cron"
	httpHandler "github.com/opencollective/ledger/services/ledger/handler/http"
)

// Handler combines all handlers for the ledger service
type Handler struct {
	ledgerHTTP     *httpHandler.LedgerHandler
	settlementCron *cronHandler.SettlementJob
}

// NewHandler creates a new combined handler
func NewHandler(
	ledgerUC ledger.LedgerUC,
	cfg *models.Config,
	nrApp *newrelic.Application,
) *Handler {
	return &Handler{
		ledgerHTTP:     httpHandler.NewLedgerHandler(ledgerUC),
		settlementCron: cronHandler.NewSettlementJob(ledgerUC, cfg, nrApp),
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(e *echo.Echo, apiKeyMiddleware *middleware.APIKeyMiddleware) {
	// Internal routes for the platform API and operators (API key required)
	internal := e.Group("/internal", apiKeyMiddleware.ValidateAPIKey(middleware.ClientLedger, middleware.ClientOperator))

	internal.POST("/contributions", nrpkg.TraceHandler("Ledger.RecordContribution", h.ledgerHTTP.RecordContribution))
	internal.POST("/expenses", nrpkg.TraceHandler("Ledger.RecordExpensePayment", h.ledgerHTTP.RecordExpensePayment))

	groups := internal.Group("/groups")
	groups.GET("/:group", nrpkg.TraceHandler("Ledger.GetTransactionGroup", h.ledgerHTTP.GetTransactionGroup))
	groups.POST("/:group/refund", nrpkg.TraceHandler("Ledger.RefundTransactionGroup", h.ledgerHTTP.RefundTransactionGroup))

	collectives := internal.Group("/collectives")
	collectives.GET("/:collectiveID/transactions", nrpkg.TraceHandler("Ledger.ListTransactions", h.ledgerHTTP.ListTransactions))
	collectives.GET("/:collectiveID/balance", nrpkg.TraceHandler("Ledger.GetBalance", h.ledgerHTTP.GetBalance))

	internal.GET("/settlements", nrpkg.TraceHandler("Ledger.ListSettlements", h.ledgerHTTP.ListSettlements))
	internal.POST("/hosts/:hostID/invoices", nrpkg.TraceHandler("Ledger.InvoiceHostSettlements", h.ledgerHTTP.InvoiceHostSettlements))
	internal.POST("/invoices/:invoiceID/settle", nrpkg.TraceHandler("Ledger.MarkInvoiceSettled", h.ledgerHTTP.MarkInvoiceSettled))

	// Maintenance is restricted to operators
	maintenance := internal.Group("/maintenance", apiKeyMiddleware.ValidateAPIKey(middleware.ClientOperator))
	maintenance.POST("/split-fees", nrpkg.TraceHandler("Ledger.SplitLegacyFees", h.ledgerHTTP.SplitLegacyFees))
	maintenance.POST("/check", nrpkg.TraceHandler("Ledger.CheckLedger", h.ledgerHTTP.CheckLedger))
}

// StartCron schedules the monthly settlement job
func (h *Handler) StartCron() error {
	return h.settlementCron.Start()
}

// StopCron stops the scheduler and waits for a running job
func (h *Handler) StopCron() {
	h.settlementCron.Stop()
}
