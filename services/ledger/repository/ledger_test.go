package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/opencollective/ledger/internal/pkg/database"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func setupMockRedis(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return database.NewRedisClientFromClient(client), mr
}

var transactionRowColumns = []string{
	"id", "uuid", "kind", "type", "transaction_group",
	"collective_id", "from_collective_id", "host_collective_id", "order_id", "expense_id",
	"amount", "currency", "host_currency", "host_currency_fx_rate", "amount_in_host_currency",
	"host_fee_in_host_currency", "platform_fee_in_host_currency",
	"payment_processor_fee_in_host_currency", "tax_amount",
	"net_amount_in_collective_currency",
	"is_refund", "refund_transaction_id", "is_debt", "description", "created_at",
}

func transactionRow(id int64, group uuid.UUID, typ models.TransactionType, collectiveID, fromID, amount int64, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id, uuid.New().String(), "CONTRIBUTION", string(typ), group.String(),
		collectiveID, fromID, int64(30), int64(900), nil,
		amount, "USD", "USD", "1.000000", amount,
		int64(0), int64(0), int64(0), int64(0),
		amount,
		false, nil, false, "Monthly contribution", createdAt,
	}
}

func TestGetTransactionGroup(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	group := uuid.New()
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
		WithArgs(group).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns).
			AddRow(transactionRow(1, group, models.TransactionTypeCredit, 10, 20, 5000, createdAt)...).
			AddRow(transactionRow(2, group, models.TransactionTypeDebit, 20, 10, -5000, createdAt)...))

	rows, err := repo.GetTransactionGroup(context.Background(), group)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.KindContribution, rows[0].Kind)
	assert.Equal(t, group, rows[0].TransactionGroup)
	assert.Equal(t, int64(30), *rows[0].HostCollectiveID)
	assert.Nil(t, rows[0].ExpenseID)
	assert.True(t, decimal.NewFromInt(1).Equal(rows[0].HostCurrencyFxRate))
	assert.Equal(t, models.TransactionTypeDebit, rows[1].Type)
	assert.Equal(t, int64(-5000), rows[1].NetAmountInCollectiveCurrency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionsByIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)

	rows, err := repo.GetTransactionsByIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, rows)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	_, err = repo.GetTransactionsByIDs(context.Background(), []int64{4, 5})
	assert.ErrorContains(t, err, "failed to get transactions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactions(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	group := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WithArgs(int64(10), sqlmock.AnyArg(), 50, 100).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns).
			AddRow(transactionRow(1, group, models.TransactionTypeCredit, 10, 20, 5000, time.Now())...))

	rows, err := repo.ListTransactions(context.Background(), models.TransactionFilter{
		CollectiveID: 10,
		Kinds:        []models.TransactionKind{models.KindContribution},
		Limit:        50,
		Offset:       100,
	})

	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func refundPlan() *models.LedgerPlan {
	group := uuid.New()
	original := []*models.Transaction{{ID: 7}, {ID: 8}}
	credit := &models.Transaction{Kind: models.KindContribution, Type: models.TransactionTypeCredit, TransactionGroup: group, IsRefund: true, RefundOf: original[1]}
	debit := &models.Transaction{Kind: models.KindContribution, Type: models.TransactionTypeDebit, TransactionGroup: group, IsRefund: true, RefundOf: original[0]}
	return &models.LedgerPlan{
		Inserts: []*models.Transaction{credit, debit},
		Settlements: []*models.TransactionSettlement{{
			TransactionGroup: group,
			Kind:             models.KindPlatformTipDebt,
			Status:           models.SettlementOwed,
		}},
	}
}

func TestApplyPlan(t *testing.T) {
	tests := []struct {
		name       string
		plan       func() *models.LedgerPlan
		mockSetup  func(mock sqlmock.Sqlmock)
		assertFunc func(t *testing.T, plan *models.LedgerPlan, err error)
	}{
		{
			name: "empty plan is a no-op",
			plan: func() *models.LedgerPlan { return &models.LedgerPlan{} },
			mockSetup: func(mock sqlmock.Sqlmock) {
			},
			assertFunc: func(t *testing.T, plan *models.LedgerPlan, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "refund rows are linked both ways",
			plan: refundPlan,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
				mock.ExpectExec(regexp.QuoteMeta("SET refund_transaction_id")).
					WithArgs(int64(101), int64(8)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
				mock.ExpectExec(regexp.QuoteMeta("SET refund_transaction_id")).
					WithArgs(int64(102), int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (transaction_group, kind) DO UPDATE")).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			assertFunc: func(t *testing.T, plan *models.LedgerPlan, err error) {
				require.NoError(t, err)
				credit, debit := plan.Inserts[0], plan.Inserts[1]
				assert.Equal(t, int64(101), credit.ID)
				assert.Equal(t, int64(8), *credit.RefundTransactionID)
				assert.Equal(t, int64(101), *credit.RefundOf.RefundTransactionID)
				assert.Equal(t, int64(102), debit.ID)
				assert.Equal(t, int64(102), *debit.RefundOf.RefundTransactionID)
			},
		},
		{
			name: "concurrent refund rolls back",
			plan: refundPlan,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
				mock.ExpectExec(regexp.QuoteMeta("SET refund_transaction_id")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			assertFunc: func(t *testing.T, plan *models.LedgerPlan, err error) {
				assert.ErrorIs(t, err, models.ErrAlreadyRefunded)
			},
		},
		{
			name: "split updates run before inserts",
			plan: func() *models.LedgerPlan {
				return &models.LedgerPlan{
					Updates: []*models.Transaction{{ID: 1, Amount: 100, NetAmountInCollectiveCurrency: 100}},
					Inserts: []*models.Transaction{{Kind: models.KindHostFee, Type: models.TransactionTypeCredit, Amount: 5}},
				}
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET")).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
					WillReturnError(errors.New("check constraint violated"))
				mock.ExpectRollback()
			},
			assertFunc: func(t *testing.T, plan *models.LedgerPlan, err error) {
				assert.ErrorContains(t, err, "failed to insert HOST_FEE transaction")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewLedgerRepository(&models.Config{}, db, nil)
			tt.mockSetup(mock)
			plan := tt.plan()

			err := repo.ApplyPlan(context.Background(), plan)

			tt.assertFunc(t, plan, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetBalances(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SUM(net_amount_in_collective_currency)")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"currency", "amount"}).
			AddRow("EUR", int64(1200)).
			AddRow("USD", int64(-50)))

	balances, err := repo.GetBalances(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, []models.Balance{{Currency: "EUR", Amount: 1200}, {Currency: "USD", Amount: -50}}, balances)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLegacyFeeGroups(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)
	since := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	groups := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectQuery(`platform_fee_in_host_currency <> 0(.|\n)+created_at >= \$1(.|\n)+LIMIT \$2`).
		WithArgs(since, 200).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_group"}).
			AddRow(groups[0].String()).
			AddRow(groups[1].String()))

	got, err := repo.FindLegacyFeeGroups(context.Background(), models.SplitFilter{Since: &since, Limit: 200})

	require.NoError(t, err)
	assert.Equal(t, groups, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListGroupsForCheck_NoLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(&models.Config{}, db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY transaction_group")).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_group"}))

	got, err := repo.ListGroupsForCheck(context.Background(), models.CheckFilter{})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceCache(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	repo := NewLedgerRepository(&models.Config{}, nil, redisClient)
	ctx := context.Background()

	_, ok, err := repo.GetCachedBalances(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	balances := []models.Balance{{Currency: "USD", Amount: 4200}}
	require.NoError(t, repo.CacheBalances(ctx, 10, balances, time.Minute))
	require.NoError(t, repo.CacheBalances(ctx, 11, balances, time.Minute))

	got, ok, err := repo.GetCachedBalances(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, balances, got)
	assert.True(t, mr.Exists("ledger:balance:10"))

	require.NoError(t, repo.InvalidateBalances(ctx, 10, 11, 12))
	assert.False(t, mr.Exists("ledger:balance:10"))
	assert.False(t, mr.Exists("ledger:balance:11"))

	require.NoError(t, repo.CacheBalances(ctx, 10, balances, time.Minute))
	mr.FastForward(2 * time.Minute)
	_, ok, _ = repo.GetCachedBalances(ctx, 10)
	assert.False(t, ok)

	mr.Set("ledger:balance:10", "not json")
	_, ok, err = repo.GetCachedBalances(ctx, 10)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLocks(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	repo := NewLedgerRepository(&models.Config{}, nil, redisClient)
	ctx := context.Background()
	key := "ledger:lock:group:abc"

	ok, err := repo.AcquireLock(ctx, key, "token-a", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AcquireLock(ctx, key, "token-b", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// only the owner releases
	require.NoError(t, repo.ReleaseLock(ctx, key, "token-b"))
	assert.True(t, mr.Exists(key))
	require.NoError(t, repo.ReleaseLock(ctx, key, "token-a"))
	assert.False(t, mr.Exists(key))
}
