package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settlementColumns = []string{
	"transaction_group", "kind", "status", "invoice_id", "created_at", "updated_at",
	"host_collective_id", "amount", "currency",
}

func TestListSettlements_Filters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	before := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	group := uuid.New()
	createdAt := before.AddDate(0, 0, -10)

	mock.ExpectQuery(`s.status = \$2 AND s.created_at < \$3(.|\n)+LIMIT \$4`).
		WithArgs(int64(30), models.SettlementOwed, before, 10).
		WillReturnRows(sqlmock.NewRows(settlementColumns).
			AddRow(group.String(), "PLATFORM_TIP_DEBT", "OWED", nil, createdAt, createdAt, int64(30), int64(1000), "USD"))

	debts, err := repo.ListSettlements(context.Background(), models.SettlementFilter{
		HostCollectiveID: 30,
		Status:           models.SettlementOwed,
		CreatedBefore:    &before,
		Limit:            10,
	})

	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, group, debts[0].TransactionGroup)
	assert.Equal(t, models.KindPlatformTipDebt, debts[0].Kind)
	assert.Equal(t, models.SettlementOwed, debts[0].Status)
	assert.Nil(t, debts[0].InvoiceID)
	assert.Equal(t, int64(30), debts[0].HostCollectiveID)
	assert.Equal(t, int64(1000), debts[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSettlements_ByGroupAndInvoice(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	group := uuid.New()
	invoiceID := uuid.New()

	mock.ExpectQuery(`WHERE s.transaction_group = \$1 AND s.kind = ANY\(\$2\) AND s.invoice_id = \$3\s+ORDER BY`).
		WithArgs(group, sqlmock.AnyArg(), invoiceID).
		WillReturnRows(sqlmock.NewRows(settlementColumns))

	debts, err := repo.ListSettlements(context.Background(), models.SettlementFilter{
		TransactionGroup: &group,
		Kinds:            []models.TransactionKind{models.KindHostFeeShareDebt},
		InvoiceID:        &invoiceID,
	})

	require.NoError(t, err)
	assert.Empty(t, debts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceSettlements(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	invoiceID := uuid.New()
	debts := []*models.SettlementDebt{
		{TransactionSettlement: models.TransactionSettlement{TransactionGroup: uuid.New(), Kind: models.KindPlatformTipDebt}},
		{TransactionSettlement: models.TransactionSettlement{TransactionGroup: uuid.New(), Kind: models.KindHostFeeShareDebt}},
	}

	n, err := repo.InvoiceSettlements(context.Background(), nil, invoiceID)
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec(regexp.QuoteMeta("FROM unnest($3::uuid[], $4::text[])")).
		WithArgs(models.SettlementInvoiced, invoiceID, sqlmock.AnyArg(), sqlmock.AnyArg(), models.SettlementOwed).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err = repo.InvoiceSettlements(context.Background(), debts, invoiceID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleInvoice(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	invoiceID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("WHERE invoice_id = $2 AND status = $3")).
		WithArgs(models.SettlementSettled, invoiceID, models.SettlementInvoiced).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("WHERE invoice_id = $2 AND status = $3")).
		WillReturnError(errors.New("deadlock detected"))

	n, err := repo.SettleInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = repo.SettleInvoice(context.Background(), invoiceID)
	assert.ErrorContains(t, err, "failed to settle invoice")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHostsWithOwedSettlements(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	before := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT COALESCE(t.host_collective_id, t.collective_id)")).
		WithArgs(models.SettlementOwed, before).
		WillReturnRows(sqlmock.NewRows([]string{"host_collective_id"}).AddRow(int64(30)).AddRow(int64(31)))

	hosts, err := repo.ListHostsWithOwedSettlements(context.Background(), before)

	require.NoError(t, err)
	assert.Equal(t, []int64{30, 31}, hosts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
