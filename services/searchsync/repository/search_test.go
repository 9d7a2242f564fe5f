package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/services/searchsync/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func transactionsAdapter(t *testing.T) *models.SearchAdapter {
	a, ok := adapter.NewRegistry("test_").ByTable("transactions")
	require.True(t, ok)
	return a
}

func TestFetchDocuments(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSearchRepository(db)
	a := transactionsAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id", "uuid", "kind"`) + `(.|\n)+` + regexp.QuoteMeta(`FROM "transactions"`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow(`{"id": 9007199254740993, "kind": "CONTRIBUTION", "amount": -1500, "description": "Refund"}`).
			AddRow(`{"id": 12, "kind": "HOST_FEE", "amount": 75, "description": null}`))

	docs, err := repo.FetchDocuments(context.Background(), a, []int64{9007199254740993, 12, 13})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, json.Number("9007199254740993"), docs[0]["id"])
	assert.Equal(t, json.Number("-1500"), docs[0]["amount"])
	assert.Equal(t, "HOST_FEE", docs[1]["kind"])
	assert.Nil(t, docs[1]["description"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDocuments_NoIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSearchRepository(db)

	docs, err := repo.FetchDocuments(context.Background(), transactionsAdapter(t), nil)

	assert.NoError(t, err)
	assert.Nil(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDocuments_Errors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSearchRepository(db)
	a := transactionsAdapter(t)

	mock.ExpectQuery("row_to_json").WillReturnError(errors.New("relation does not exist"))
	_, err := repo.FetchDocuments(context.Background(), a, []int64{1})
	assert.ErrorContains(t, err, "failed to fetch transactions documents")

	mock.ExpectQuery("row_to_json").WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(`{"id":`))
	_, err = repo.FetchDocuments(context.Background(), a, []int64{1})
	assert.ErrorContains(t, err, "failed to decode transactions document")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSearchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM "transactions"`)).
		WithArgs(int64(100), 3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)).AddRow(int64(104)).AddRow(int64(110)))

	ids, err := repo.ListIDs(context.Background(), transactionsAdapter(t), 100, 3)

	require.NoError(t, err)
	assert.Equal(t, []int64{101, 104, 110}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstallTriggers(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSearchRepository(db)
	adapters := adapter.NewRegistry("").All()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE OR REPLACE FUNCTION search_sync_notify()")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, a := range adapters {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TRIGGER "search_sync_`+a.Table+`" AFTER INSERT OR UPDATE OR DELETE ON "`+a.Table+`"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.InstallTriggers(context.Background(), adapters))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstallTriggers_RollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSearchRepository(db)
	adapters := adapter.NewRegistry("").All()

	mock.ExpectBegin()
	mock.ExpectExec("search_sync_notify").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TRIGGER "search_sync_collectives"`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := repo.InstallTriggers(context.Background(), adapters)

	assert.ErrorContains(t, err, "failed to create triggers on collectives")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveTriggers(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSearchRepository(db)
	adapters := adapter.NewRegistry("").All()[:2]

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TRIGGER IF EXISTS "search_sync_collectives" ON "collectives"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DROP TRIGGER IF EXISTS "search_sync_transactions" ON "transactions"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(dropNotifyFunctionQuery)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.RemoveTriggers(context.Background(), adapters))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTriggersQuery(t *testing.T) {
	query := createTriggersQuery("host_applications")

	assert.Contains(t, query, `DROP TRIGGER IF EXISTS "search_sync_truncate_host_applications" ON "host_applications"`)
	assert.Contains(t, query, `AFTER TRUNCATE ON "host_applications"`)
	assert.Contains(t, query, "FOR EACH STATEMENT EXECUTE FUNCTION search_sync_notify()")
	assert.Contains(t, createNotifyFunctionQuery, "pg_notify('search_sync_requests'")
}
