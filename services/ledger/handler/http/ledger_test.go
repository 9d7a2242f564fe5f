package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/utils"
	"github.com/opencollective/ledger/services/ledger/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	e := echo.New()
	request := httptest.NewRequest(method, target, reader)
	if body != nil {
		request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	recorder := httptest.NewRecorder()
	return e.NewContext(request, recorder), recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder, data interface{}) utils.Response {
	t.Helper()
	var resp utils.Response
	if data != nil {
		resp.Data = data
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp
}

func TestNewLedgerHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)

	assert.NotNil(t, handler)
	assert.Equal(t, mockLedgerUC, handler.ledgerUC)
}

func TestLedgerHandler_RecordContribution(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "invalid input", err: fmt.Errorf("%w: platform tip must be lower than amount", models.ErrInvalidInput), wantStatus: http.StatusBadRequest},
		{name: "lock busy", err: models.ErrLockNotAcquired, wantStatus: http.StatusConflict},
		{name: "database failure", err: errors.New("connection refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
			handler := NewLedgerHandler(mockLedgerUC)

			input := models.ContributionInput{
				Kind:             models.KindContribution,
				FromCollectiveID: 20,
				CollectiveID:     10,
				HostCollectiveID: 30,
				Amount:           10000,
				Currency:         "USD",
				HostCurrency:     "USD",
				HostFeePercent:   decimal.NewFromInt(5),
			}

			var ret []*models.Transaction
			if tt.err == nil {
				ret = []*models.Transaction{{ID: 1, Kind: models.KindContribution, Type: models.TransactionTypeCredit, Amount: 10000}}
			}
			mockLedgerUC.EXPECT().
				RecordContribution(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, got *models.ContributionInput) ([]*models.Transaction, error) {
					assert.Equal(t, input.CollectiveID, got.CollectiveID)
					assert.Equal(t, input.Amount, got.Amount)
					assert.True(t, input.HostFeePercent.Equal(got.HostFeePercent))
					return ret, tt.err
				}).
				Times(1)

			c, recorder := newContext(http.MethodPost, "/internal/contributions", input)
			err := handler.RecordContribution(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, recorder.Body.String(), "connection refused")
			}
		})
	}
}

func TestLedgerHandler_RecordContribution_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewLedgerHandler(mocks.NewMockLedgerUC(ctrl))

	e := echo.New()
	request := httptest.NewRequest(http.MethodPost, "/internal/contributions", bytes.NewBufferString("{not json"))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	recorder := httptest.NewRecorder()

	err := handler.RecordContribution(e.NewContext(request, recorder))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLedgerHandler_RecordExpensePayment_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)

	mockLedgerUC.EXPECT().
		RecordExpensePayment(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: USD balance 500 is lower than 1000", models.ErrInsufficientBalance)).
		Times(1)

	c, recorder := newContext(http.MethodPost, "/internal/expenses", models.ExpensePaymentInput{
		CollectiveID: 10, PayeeCollectiveID: 40, HostCollectiveID: 30, Amount: 1000, Currency: "USD",
	})
	err := handler.RecordExpensePayment(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "insufficient")
}

func TestLedgerHandler_RefundTransactionGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)
	group := uuid.New()

	mockLedgerUC.EXPECT().
		RefundTransactionGroup(gomock.Any(), group, models.RefundOptions{KeepPlatformTip: true}).
		Return([]*models.Transaction{{ID: 7, IsRefund: true}, {ID: 8, IsRefund: true}}, nil).
		Times(1)

	c, recorder := newContext(http.MethodPost, "/", models.RefundOptions{KeepPlatformTip: true})
	c.SetParamNames("group")
	c.SetParamValues(group.String())

	err := handler.RefundTransactionGroup(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	var rows []*models.Transaction
	resp := decodeResponse(t, recorder, &rows)
	assert.True(t, resp.Success)
	assert.Len(t, rows, 2)
}

func TestLedgerHandler_RefundTransactionGroup_Errors(t *testing.T) {
	tests := []struct {
		name       string
		group      string
		err        error
		wantStatus int
	}{
		{name: "invalid group", group: "not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "already refunded", group: uuid.NewString(), err: fmt.Errorf("%w: transaction 4", models.ErrAlreadyRefunded), wantStatus: http.StatusConflict},
		{name: "unknown group", group: uuid.NewString(), err: models.ErrGroupNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
			handler := NewLedgerHandler(mockLedgerUC)
			if tt.err != nil {
				mockLedgerUC.EXPECT().
					RefundTransactionGroup(gomock.Any(), uuid.MustParse(tt.group), models.RefundOptions{}).
					Return(nil, tt.err).
					Times(1)
			}

			c, recorder := newContext(http.MethodPost, "/", nil)
			c.SetParamNames("group")
			c.SetParamValues(tt.group)

			err := handler.RefundTransactionGroup(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestLedgerHandler_GetTransactionGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)
	group := uuid.New()

	mockLedgerUC.EXPECT().
		GetTransactionGroup(gomock.Any(), group).
		Return([]*models.Transaction{{ID: 1, TransactionGroup: group}}, nil).
		Times(1)

	c, recorder := newContext(http.MethodGet, "/", nil)
	c.SetParamNames("group")
	c.SetParamValues(group.String())

	assert.NoError(t, handler.GetTransactionGroup(c))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestLedgerHandler_ListTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)

	mockLedgerUC.EXPECT().
		ListTransactions(gomock.Any(), models.TransactionFilter{
			CollectiveID: 10,
			Kinds:        []models.TransactionKind{models.KindContribution, models.KindHostFee},
			Limit:        10,
			Offset:       20,
		}).
		Return([]*models.Transaction{}, nil).
		Times(1)

	c, recorder := newContext(http.MethodGet, "/?kind=CONTRIBUTION&kind=HOST_FEE&limit=10&offset=20", nil)
	c.SetParamNames("collectiveID")
	c.SetParamValues("10")

	assert.NoError(t, handler.ListTransactions(c))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestLedgerHandler_ListTransactions_BadQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewLedgerHandler(mocks.NewMockLedgerUC(ctrl))

	c, recorder := newContext(http.MethodGet, "/?limit=ten", nil)
	c.SetParamNames("collectiveID")
	c.SetParamValues("10")
	assert.NoError(t, handler.ListTransactions(c))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	c, recorder = newContext(http.MethodGet, "/", nil)
	c.SetParamNames("collectiveID")
	c.SetParamValues("abc")
	assert.NoError(t, handler.ListTransactions(c))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLedgerHandler_GetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)

	mockLedgerUC.EXPECT().
		GetBalance(gomock.Any(), int64(10)).
		Return([]models.Balance{{Currency: "USD", Amount: 8500}, {Currency: "EUR", Amount: 120}}, nil).
		Times(1)

	c, recorder := newContext(http.MethodGet, "/", nil)
	c.SetParamNames("collectiveID")
	c.SetParamValues("10")

	assert.NoError(t, handler.GetBalance(c))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var balances []models.Balance
	decodeResponse(t, recorder, &balances)
	assert.Equal(t, []models.Balance{{Currency: "USD", Amount: 8500}, {Currency: "EUR", Amount: 120}}, balances)
}

func TestLedgerHandler_ListSettlements(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)
	invoiceID := uuid.New()

	mockLedgerUC.EXPECT().
		ListSettlements(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.SettlementFilter) ([]*models.SettlementDebt, error) {
			assert.Equal(t, int64(30), filter.HostCollectiveID)
			assert.Equal(t, models.SettlementInvoiced, filter.Status)
			assert.Equal(t, []models.TransactionKind{models.KindPlatformTipDebt}, filter.Kinds)
			require.NotNil(t, filter.InvoiceID)
			assert.Equal(t, invoiceID, *filter.InvoiceID)
			assert.Nil(t, filter.TransactionGroup)
			return []*models.SettlementDebt{}, nil
		}).
		Times(1)

	target := "/?host_collective_id=30&status=INVOICED&kind=PLATFORM_TIP_DEBT&invoice_id=" + invoiceID.String()
	c, recorder := newContext(http.MethodGet, target, nil)

	assert.NoError(t, handler.ListSettlements(c))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestLedgerHandler_ListSettlements_InvalidInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewLedgerHandler(mocks.NewMockLedgerUC(ctrl))

	c, recorder := newContext(http.MethodGet, "/?invoice_id=42", nil)
	assert.NoError(t, handler.ListSettlements(c))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLedgerHandler_InvoiceHostSettlements(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)
	until := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	invoice := &models.SettlementInvoice{InvoiceID: uuid.New(), HostCollectiveID: 30, Totals: map[string]int64{"USD": 1135}, Debts: 2}

	mockLedgerUC.EXPECT().
		InvoiceHostSettlements(gomock.Any(), int64(30), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, got time.Time) (*models.SettlementInvoice, error) {
			assert.True(t, until.Equal(got))
			return invoice, nil
		}).
		Times(1)

	c, recorder := newContext(http.MethodPost, "/", InvoiceRequest{Until: &until})
	c.SetParamNames("hostID")
	c.SetParamValues("30")

	assert.NoError(t, handler.InvoiceHostSettlements(c))
	assert.Equal(t, http.StatusCreated, recorder.Code)

	var got models.SettlementInvoice
	decodeResponse(t, recorder, &got)
	assert.Equal(t, invoice.InvoiceID, got.InvoiceID)
	assert.Equal(t, int64(1135), got.Totals["USD"])
}

func TestLedgerHandler_InvoiceHostSettlements_NothingOwed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)

	mockLedgerUC.EXPECT().
		InvoiceHostSettlements(gomock.Any(), int64(30), gomock.Any()).
		Return(nil, models.ErrNoOwedSettlements).
		Times(1)

	c, recorder := newContext(http.MethodPost, "/", nil)
	c.SetParamNames("hostID")
	c.SetParamValues("30")

	assert.NoError(t, handler.InvoiceHostSettlements(c))
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestLedgerHandler_MarkInvoiceSettled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)
	invoiceID := uuid.New()

	mockLedgerUC.EXPECT().
		MarkInvoiceSettled(gomock.Any(), invoiceID).
		Return(nil, models.ErrInvoiceNotFound).
		Times(1)

	c, recorder := newContext(http.MethodPost, "/", nil)
	c.SetParamNames("invoiceID")
	c.SetParamValues(invoiceID.String())

	assert.NoError(t, handler.MarkInvoiceSettled(c))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestLedgerHandler_SplitLegacyFees(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)

	mockLedgerUC.EXPECT().
		SplitLegacyFees(gomock.Any(), models.SplitFilter{Limit: 100, DryRun: true}).
		Return(&models.SplitReport{GroupsScanned: 3, GroupsSplit: 2, Skipped: 1, DryRun: true, ByKind: map[string]int64{}}, nil).
		Times(1)

	c, recorder := newContext(http.MethodPost, "/", models.SplitFilter{Limit: 100, DryRun: true})

	assert.NoError(t, handler.SplitLegacyFees(c))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var report models.SplitReport
	decodeResponse(t, recorder, &report)
	assert.Equal(t, 2, report.GroupsSplit)
	assert.True(t, report.DryRun)
}

func TestLedgerHandler_CheckLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedgerUC := mocks.NewMockLedgerUC(ctrl)
	handler := NewLedgerHandler(mockLedgerUC)

	mockLedgerUC.EXPECT().
		CheckLedger(gomock.Any(), models.CheckFilter{}).
		Return(&models.CheckReport{
			GroupsChecked: 1,
			Violations:    []models.Violation{{TransactionGroup: uuid.New(), Rule: "pair-count", Detail: "1 credit, 0 debit"}},
		}, nil).
		Times(1)

	c, recorder := newContext(http.MethodPost, "/", nil)

	assert.NoError(t, handler.CheckLedger(c))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var report models.CheckReport
	resp := decodeResponse(t, recorder, &report)
	assert.Equal(t, "Ledger violations found", resp.Message)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "pair-count", report.Violations[0].Rule)
}
