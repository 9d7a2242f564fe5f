package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/middleware"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/utils"
	"github.com/opencollective/ledger/services/ledger"
)

// LedgerHandler handles HTTP requests for ledger operations
type LedgerHandler struct {
	ledgerUC ledger.LedgerUC
}

// NewLedgerHandler creates a new ledger HTTP handler
func NewLedgerHandler(ledgerUC ledger.LedgerUC) *LedgerHandler {
	return &LedgerHandler{
		ledgerUC: ledgerUC,
	}
}

// InvoiceRequest is the body of a host invoicing request
type InvoiceRequest struct {
	Until *time.Time `json:"until"`
}

// RecordContribution records the transaction group of a paid order
func (h *LedgerHandler) RecordContribution(c echo.Context) error {
	var input models.ContributionInput
	if err := c.Bind(&input); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	middleware.SetCollectiveID(c, input.CollectiveID)

	ctx := c.Request().Context()
	txs, err := h.ledgerUC.RecordContribution(ctx, &input)
	if err != nil {
		middleware.NoticeError(c, err)
		logger.ErrorCtx(ctx, "Failed to record contribution",
			logger.Int64("collective_id", input.CollectiveID),
			logger.Int64("from_collective_id", input.FromCollectiveID),
			logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Contribution recorded", txs)
}

// RecordExpensePayment records the payment of an approved expense
func (h *LedgerHandler) RecordExpensePayment(c echo.Context) error {
	var input models.ExpensePaymentInput
	if err := c.Bind(&input); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	middleware.SetCollectiveID(c, input.CollectiveID)

	ctx := c.Request().Context()
	txs, err := h.ledgerUC.RecordExpensePayment(ctx, &input)
	if err != nil {
		middleware.NoticeError(c, err)
		logger.ErrorCtx(ctx, "Failed to record expense payment",
			logger.Int64("collective_id", input.CollectiveID),
			logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Expense payment recorded", txs)
}

// RefundTransactionGroup refunds every pair of a transaction group
func (h *LedgerHandler) RefundTransactionGroup(c echo.Context) error {
	var group uuid.UUID
	if err := echo.PathParamsBinder(c).MustTextUnmarshaler("group", &group).BindError(); err != nil {
		return utils.BadRequestResponse(c, "Invalid transaction group")
	}

	var opts models.RefundOptions
	if err := c.Bind(&opts); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	middleware.SetTransactionGroup(c, group.String())

	ctx := c.Request().Context()
	txs, err := h.ledgerUC.RefundTransactionGroup(ctx, group, opts)
	if err != nil {
		middleware.NoticeError(c, err)
		logger.ErrorCtx(ctx, "Failed to refund transaction group",
			logger.Stringer("transaction_group", group),
			logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}

	logger.InfoCtx(ctx, "Refunded transaction group",
		logger.Stringer("transaction_group", group),
		logger.Int("transactions", len(txs)))

	return utils.SuccessResponse(c, http.StatusCreated, "Transaction group refunded", txs)
}

// GetTransactionGroup returns the rows of a transaction group
func (h *LedgerHandler) GetTransactionGroup(c echo.Context) error {
	var group uuid.UUID
	if err := echo.PathParamsBinder(c).MustTextUnmarshaler("group", &group).BindError(); err != nil {
		return utils.BadRequestResponse(c, "Invalid transaction group")
	}

	middleware.SetTransactionGroup(c, group.String())

	txs, err := h.ledgerUC.GetTransactionGroup(c.Request().Context(), group)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", txs)
}

// ListTransactions lists the transactions of a collective, newest first
func (h *LedgerHandler) ListTransactions(c echo.Context) error {
	filter := models.TransactionFilter{}
	if err := echo.PathParamsBinder(c).MustInt64("collectiveID", &filter.CollectiveID).BindError(); err != nil {
		return utils.BadRequestResponse(c, "Invalid collective id")
	}

	var kinds []string
	err := echo.QueryParamsBinder(c).
		Strings("kind", &kinds).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid query: "+err.Error())
	}
	for _, k := range kinds {
		filter.Kinds = append(filter.Kinds, models.TransactionKind(k))
	}

	txs, err := h.ledgerUC.ListTransactions(c.Request().Context(), filter)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", txs)
}

// GetBalance returns the balance of a collective per currency
func (h *LedgerHandler) GetBalance(c echo.Context) error {
	var collectiveID int64
	if err := echo.PathParamsBinder(c).MustInt64("collectiveID", &collectiveID).BindError(); err != nil {
		return utils.BadRequestResponse(c, "Invalid collective id")
	}

	middleware.SetCollectiveID(c, collectiveID)

	balances, err := h.ledgerUC.GetBalance(c.Request().Context(), collectiveID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", balances)
}

// ListSettlements lists debt settlements
func (h *LedgerHandler) ListSettlements(c echo.Context) error {
	var (
		filter    models.SettlementFilter
		status    string
		kinds     []string
		group     uuid.UUID
		invoiceID uuid.UUID
	)
	err := echo.QueryParamsBinder(c).
		Int64("host_collective_id", &filter.HostCollectiveID).
		String("status", &status).
		Strings("kind", &kinds).
		TextUnmarshaler("transaction_group", &group).
		TextUnmarshaler("invoice_id", &invoiceID).
		Int("limit", &filter.Limit).
		BindError()
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid query: "+err.Error())
	}

	filter.Status = models.SettlementStatus(status)
	for _, k := range kinds {
		filter.Kinds = append(filter.Kinds, models.TransactionKind(k))
	}
	if group != uuid.Nil {
		filter.TransactionGroup = &group
	}
	if invoiceID != uuid.Nil {
		filter.InvoiceID = &invoiceID
	}

	debts, err := h.ledgerUC.ListSettlements(c.Request().Context(), filter)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", debts)
}

// InvoiceHostSettlements invoices the owed debts of a host
func (h *LedgerHandler) InvoiceHostSettlements(c echo.Context) error {
	var hostID int64
	if err := echo.PathParamsBinder(c).MustInt64("hostID", &hostID).BindError(); err != nil {
		return utils.BadRequestResponse(c, "Invalid host collective id")
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
	until := time.Now().UTC()
	if req.Until != nil {
		until = *req.Until
	}

	ctx := c.Request().Context()
	invoice, err := h.ledgerUC.InvoiceHostSettlements(ctx, hostID, until)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to invoice host settlements",
			logger.Int64("host_collective_id", hostID),
			logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Settlements invoiced", invoice)
}

// MarkInvoiceSettled marks the debts of an invoice as settled
func (h *LedgerHandler) MarkInvoiceSettled(c echo.Context) error {
	var invoiceID uuid.UUID
	if err := echo.PathParamsBinder(c).MustTextUnmarshaler("invoiceID", &invoiceID).BindError(); err != nil {
		return utils.BadRequestResponse(c, "Invalid invoice id")
	}

	invoice, err := h.ledgerUC.MarkInvoiceSettled(c.Request().Context(), invoiceID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Invoice settled", invoice)
}

// SplitLegacyFees runs the legacy fee migration over a time window
func (h *LedgerHandler) SplitLegacyFees(c echo.Context) error {
	var filter models.SplitFilter
	if err := c.Bind(&filter); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	ctx := c.Request().Context()
	report, err := h.ledgerUC.SplitLegacyFees(ctx, filter)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to split legacy fees", logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}

	logger.InfoCtx(ctx, "Split legacy fees",
		logger.Int("groups_scanned", report.GroupsScanned),
		logger.Int("groups_split", report.GroupsSplit),
		logger.Int("skipped", report.Skipped),
		logger.Int("failed", len(report.Failed)),
		logger.Bool("dry_run", report.DryRun))

	return utils.SuccessResponse(c, http.StatusOK, "", report)
}

// CheckLedger verifies the ledger invariants over a time window
func (h *LedgerHandler) CheckLedger(c echo.Context) error {
	var filter models.CheckFilter
	if err := c.Bind(&filter); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	report, err := h.ledgerUC.CheckLedger(c.Request().Context(), filter)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	message := "Ledger is consistent"
	if !report.OK() {
		message = "Ledger violations found"
	}
	return utils.SuccessResponse(c, http.StatusOK, message, report)
}
