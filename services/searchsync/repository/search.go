package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
)

// A soft delete notifies DELETE. TRUNCATE fires the statement trigger with an empty payload.
var createNotifyFunctionQuery = fmt.Sprintf(`
	CREATE OR REPLACE FUNCTION search_sync_notify() RETURNS trigger AS $$
	BEGIN
		IF TG_LEVEL = 'STATEMENT' THEN
			PERFORM pg_notify('%[1]s', json_build_object(
				'type', 'TRUNCATE_TABLE', 'table', TG_TABLE_NAME, 'payload', json_build_object())::text);
			RETURN NULL;
		END IF;

		IF TG_OP = 'DELETE' THEN
			PERFORM pg_notify('%[1]s', json_build_object(
				'type', 'DELETE', 'table', TG_TABLE_NAME, 'payload', json_build_object('id', OLD.id))::text);
			RETURN OLD;
		END IF;

		IF TG_OP = 'UPDATE' AND NEW.deleted_at IS NOT NULL AND OLD.deleted_at IS NULL THEN
			PERFORM pg_notify('%[1]s', json_build_object(
				'type', 'DELETE', 'table', TG_TABLE_NAME, 'payload', json_build_object('id', NEW.id))::text);
		ELSE
			PERFORM pg_notify('%[1]s', json_build_object(
				'type', TG_OP, 'table', TG_TABLE_NAME, 'payload', json_build_object('id', NEW.id))::text);
		END IF;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`, constants.ChannelSearchSync)

const dropNotifyFunctionQuery = `DROP FUNCTION IF EXISTS search_sync_notify()`

// SearchRepo implements the search sync repository interface
type SearchRepo struct {
	db *sqlx.DB
}

// NewSearchRepository creates a new search sync repository
func NewSearchRepository(db *sqlx.DB) *SearchRepo {
	return &SearchRepo{db: db}
}

func rowTrigger(table string) string {
	return pq.QuoteIdentifier("search_sync_" + table)
}

func truncateTrigger(table string) string {
	return pq.QuoteIdentifier("search_sync_truncate_" + table)
}

func dropTriggersQuery(table string) string {
	quoted := pq.QuoteIdentifier(table)
	return fmt.Sprintf(`
		DROP TRIGGER IF EXISTS %s ON %s;
		DROP TRIGGER IF EXISTS %s ON %s`,
		rowTrigger(table), quoted, truncateTrigger(table), quoted)
}

func createTriggersQuery(table string) string {
	quoted := pq.QuoteIdentifier(table)
	return dropTriggersQuery(table) + fmt.Sprintf(`;
		CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s
			FOR EACH ROW EXECUTE FUNCTION search_sync_notify();
		CREATE TRIGGER %s AFTER TRUNCATE ON %s
			FOR EACH STATEMENT EXECUTE FUNCTION search_sync_notify()`,
		rowTrigger(table), quoted, truncateTrigger(table), quoted)
}

// FetchDocuments loads the live rows of ids as search documents. Missing or soft deleted rows are left out.
func (r *SearchRepo) FetchDocuments(ctx context.Context, adapter *models.SearchAdapter, ids []int64) ([]models.SearchDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer nrpkg.StartDatastoreSegment(ctx, adapter.Table, "SELECT")()

	columns := make([]string, len(adapter.Columns))
	for i, c := range adapter.Columns {
		columns[i] = pq.QuoteIdentifier(c)
	}
	query := fmt.Sprintf(`
		SELECT row_to_json(d)::text AS doc
		FROM (
			SELECT %s FROM %s
			WHERE id = ANY($1) AND deleted_at IS NULL
		) d`,
		strings.Join(columns, ", "), pq.QuoteIdentifier(adapter.Table))

	var rows []string
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to fetch %s documents: %w", adapter.Table, err)
	}

	docs := make([]models.SearchDocument, 0, len(rows))
	for _, row := range rows {
		decoder := json.NewDecoder(bytes.NewReader([]byte(row)))
		decoder.UseNumber()

		var doc models.SearchDocument
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", adapter.Table, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListIDs pages through the live ids of the adapter table in id order
func (r *SearchRepo) ListIDs(ctx context.Context, adapter *models.SearchAdapter, afterID int64, limit int) ([]int64, error) {
	defer nrpkg.StartDatastoreSegment(ctx, adapter.Table, "SELECT")()

	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE id > $1 AND deleted_at IS NULL
		ORDER BY id
		LIMIT $2`, pq.QuoteIdentifier(adapter.Table))

	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("failed to list %s ids: %w", adapter.Table, err)
	}
	return ids, nil
}

// InstallTriggers creates the notify function and the triggers of every adapter table
func (r *SearchRepo) InstallTriggers(ctx context.Context, adapters []*models.SearchAdapter) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createNotifyFunctionQuery); err != nil {
		return fmt.Errorf("failed to create notify function: %w", err)
	}
	for _, a := range adapters {
		if _, err := tx.ExecContext(ctx, createTriggersQuery(a.Table)); err != nil {
			return fmt.Errorf("failed to create triggers on %s: %w", a.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveTriggers drops the triggers of every adapter table, then the notify function
func (r *SearchRepo) RemoveTriggers(ctx context.Context, adapters []*models.SearchAdapter) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range adapters {
		if _, err := tx.ExecContext(ctx, dropTriggersQuery(a.Table)); err != nil {
			return fmt.Errorf("failed to drop triggers on %s: %w", a.Table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, dropNotifyFunctionQuery); err != nil {
		return fmt.Errorf("failed to drop notify function: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
