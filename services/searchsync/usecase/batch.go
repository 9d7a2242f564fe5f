package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/pkg/retry"
)

type docKey struct {
	index string
	id    int64
}

// batchPlan is a deduplicated batch
type batchPlan struct {
	// indices wiped before anything else, with the requests that asked for it
	truncates     []*models.SearchAdapter
	truncateReqs  map[string][]models.SearchRequest
	removals      []int64
	removalReqs   []models.SearchRequest
	deletes       map[string][]models.SearchRequest
	upserts       map[string][]models.SearchRequest
	skippedTables map[string]int
}

type batchOutcome struct {
	indexed int64
	deleted int64
	failed  int64
	retried int64
	dropped int64
}

// prepareBatch deduplicates requests per document. The latest request wins,
// except that a DELETE is never replaced by an INSERT or UPDATE. A truncate
// discards everything queued before it for the same index.
func (uc *searchSyncUC) prepareBatch(batch []models.SearchRequest) *batchPlan {
	plan := &batchPlan{
		truncateReqs:  make(map[string][]models.SearchRequest),
		deletes:       make(map[string][]models.SearchRequest),
		upserts:       make(map[string][]models.SearchRequest),
		skippedTables: make(map[string]int),
	}

	latest := make(map[docKey]models.SearchRequest)
	var order []docKey
	truncated := make(map[string]bool)
	removed := make(map[int64]bool)

	for _, req := range batch {
		if req.Type == models.SearchRequestFullAccountRemoval {
			if !removed[req.Payload.ID] {
				removed[req.Payload.ID] = true
				plan.removals = append(plan.removals, req.Payload.ID)
			}
			plan.removalReqs = append(plan.removalReqs, req)
			continue
		}

		a, ok := uc.registry.ByTable(req.Table)
		if !ok {
			plan.skippedTables[req.Table]++
			continue
		}

		switch req.Type {
		case models.SearchRequestTruncateTable:
			if !truncated[a.Index] {
				truncated[a.Index] = true
				plan.truncates = append(plan.truncates, a)
			}
			plan.truncateReqs[a.Index] = append(plan.truncateReqs[a.Index], req)
			for k := range latest {
				if k.index == a.Index {
					delete(latest, k)
				}
			}

		case models.SearchRequestInsert, models.SearchRequestUpdate, models.SearchRequestDelete:
			k := docKey{index: a.Index, id: req.Payload.ID}
			prev, seen := latest[k]
			if !seen {
				order = append(order, k)
			}
			if seen && prev.Type == models.SearchRequestDelete && req.Type != models.SearchRequestDelete {
				continue
			}
			latest[k] = req

		default:
			plan.skippedTables[req.Table]++
		}
	}

	for _, k := range order {
		req, ok := latest[k]
		if !ok {
			continue
		}
		if req.Type == models.SearchRequestDelete {
			plan.deletes[k.index] = append(plan.deletes[k.index], req)
		} else {
			plan.upserts[k.index] = append(plan.upserts[k.index], req)
		}
		// a key truncated and requested again must only be emitted once
		delete(latest, k)
	}
	return plan
}

func documentID(doc models.SearchDocument) (int64, bool) {
	switch v := doc["id"].(type) {
	case interface{ Int64() (int64, error) }:
		id, err := v.Int64()
		return id, err == nil
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// process runs one batch against the search cluster and schedules retries for what failed transiently
func (uc *searchSyncUC) process(ctx context.Context, batch []models.SearchRequest) (batchOutcome, error) {
	var (
		outcome batchOutcome
		retries []models.SearchRequest
		errs    []error
	)

	plan := uc.prepareBatch(batch)
	for table, n := range plan.skippedTables {
		logger.WarnCtx(ctx, "Ignoring search sync requests for unknown table",
			logger.String("table", table),
			logger.Int("requests", n))
	}

	for _, a := range plan.truncates {
		n, err := uc.indexer.DeleteByQuery(ctx, a.Index, map[string]interface{}{"match_all": map[string]interface{}{}})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to truncate index %s: %w", a.Index, err))
			retries = append(retries, plan.truncateReqs[a.Index]...)
			continue
		}
		outcome.deleted += n
	}

	var (
		ops     []models.BulkOperation
		sources []models.SearchRequest
	)
	for _, a := range uc.registry.All() {
		for _, req := range plan.deletes[a.Index] {
			ops = append(ops, models.BulkOperation{Action: models.BulkActionDelete, Index: a.Index, ID: strconv.FormatInt(req.Payload.ID, 10)})
			sources = append(sources, req)
		}

		reqs := plan.upserts[a.Index]
		if len(reqs) == 0 {
			continue
		}
		ids := make([]int64, 0, len(reqs))
		for _, req := range reqs {
			ids = append(ids, req.Payload.ID)
		}

		docs, err := uc.repo.FetchDocuments(ctx, a, ids)
		if err != nil {
			errs = append(errs, err)
			retries = append(retries, reqs...)
			continue
		}
		byID := make(map[int64]models.SearchDocument, len(docs))
		for _, doc := range docs {
			if id, ok := documentID(doc); ok {
				byID[id] = doc
			}
		}

		for _, req := range reqs {
			id := strconv.FormatInt(req.Payload.ID, 10)
			if doc, ok := byID[req.Payload.ID]; ok {
				ops = append(ops, models.BulkOperation{Action: models.BulkActionIndex, Index: a.Index, ID: id, Document: doc})
			} else {
				// gone from the table since the notification
				ops = append(ops, models.BulkOperation{Action: models.BulkActionDelete, Index: a.Index, ID: id})
			}
			sources = append(sources, req)
		}
	}

	if len(ops) > 0 {
		result, err := uc.indexer.Bulk(ctx, ops)
		if err != nil {
			errs = append(errs, err)
			retries = append(retries, sources...)
		} else {
			for i, item := range result.Items {
				if i >= len(sources) {
					break
				}
				switch {
				case !item.Failed() && item.Action == models.BulkActionDelete:
					outcome.deleted++
				case !item.Failed():
					outcome.indexed++
				case item.Retryable():
					retries = append(retries, sources[i])
				default:
					outcome.failed++
					logger.ErrorCtx(ctx, "Search document rejected",
						logger.String("index", item.Index),
						logger.String("id", item.ID),
						logger.Int("status", item.Status),
						logger.String("error", item.Error))
				}
			}
		}
	}

	if len(plan.removals) > 0 {
		n, err := uc.removeAccounts(ctx, plan.removals)
		outcome.deleted += n
		if err != nil {
			errs = append(errs, err)
			retries = append(retries, plan.removalReqs...)
		}
	}

	if len(retries) > 0 {
		outcome.retried, outcome.dropped = uc.scheduleRetry(ctx, retries)
	}
	return outcome, errors.Join(errs...)
}

// removeAccounts deletes every document referencing one of the accounts
func (uc *searchSyncUC) removeAccounts(ctx context.Context, accountIDs []int64) (int64, error) {
	var total int64
	for _, a := range uc.registry.All() {
		if len(a.AccountFields) == 0 {
			continue
		}
		should := make([]interface{}, 0, len(a.AccountFields))
		for _, f := range a.AccountFields {
			should = append(should, map[string]interface{}{"terms": map[string]interface{}{f: accountIDs}})
		}
		query := map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}

		n, err := uc.indexer.DeleteByQuery(ctx, a.Index, query)
		if err != nil {
			return total, fmt.Errorf("failed to remove accounts from %s: %w", a.Index, err)
		}
		total += n
	}

	logger.InfoCtx(ctx, "Removed accounts from search",
		logger.Int64s("account_ids", accountIDs),
		logger.Int64("deleted", total))
	return total, nil
}

// scheduleRetry publishes reqs for a deferred attempt, grouped by attempt number.
// Requests that used up their attempts are dropped.
func (uc *searchSyncUC) scheduleRetry(ctx context.Context, reqs []models.SearchRequest) (retried, dropped int64) {
	byAttempt := make(map[int][]models.SearchRequest)
	var attempts []int
	for _, req := range reqs {
		next := req.Attempt + 1
		if next >= uc.maxAttempts {
			dropped++
			logger.ErrorCtx(ctx, "Dropping search sync request after too many attempts",
				logger.String("type", string(req.Type)),
				logger.String("table", req.Table),
				logger.Int64("id", req.Payload.ID),
				logger.Int("attempts", next))
			continue
		}
		if _, ok := byAttempt[next]; !ok {
			attempts = append(attempts, next)
		}
		req.Attempt = next
		byAttempt[next] = append(byAttempt[next], req)
	}

	for _, attempt := range attempts {
		group := byAttempt[attempt]
		msg := &models.SearchRetryMessage{Requests: group, Attempt: attempt, FailedAt: uc.now()}
		if err := uc.retryGW.PublishRetry(ctx, msg, uc.retryDelay(attempt)); err != nil {
			dropped += int64(len(group))
			logger.ErrorCtx(ctx, "Failed to publish search sync retry",
				logger.Int("attempt", attempt),
				logger.Int("requests", len(group)),
				logger.Err(err))
			continue
		}
		retried += int64(len(group))
	}
	return retried, dropped
}

func (uc *searchSyncUC) retryDelay(attempt int) time.Duration {
	return retry.Backoff(uc.retryBackoff, attempt-1)
}
