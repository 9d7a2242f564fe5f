package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/internal/pkg/retry"
	"github.com/opencollective/ledger/services/searchsync"
	"github.com/opencollective/ledger/services/searchsync/adapter"
)

const (
	defaultMaxBatchSize  = 1000
	defaultFlushInterval = 5 * time.Second
	defaultMaxAttempts   = 5
	defaultRetryDelay    = 10 * time.Second
	maxRetryDelay        = 10 * time.Minute
)

type searchSyncUC struct {
	registry *adapter.Registry
	repo     searchsync.SearchRepo
	indexer  searchsync.IndexerGW
	retryGW  searchsync.RetryGW
	nrApp    *newrelic.Application
	now      func() time.Time

	maxBatchSize  int
	flushInterval time.Duration
	maxAttempts   int
	retryBackoff  retry.Config

	mu         sync.Mutex
	queue      []models.SearchRequest
	started    bool
	processing bool
	timer      *time.Timer
	idle       chan struct{} // closed when the running process loop exits
	stats      models.SearchSyncStats
}

// NewSearchSyncUC creates the search sync batch processor
func NewSearchSyncUC(
	cfg *models.Config,
	registry *adapter.Registry,
	repo searchsync.SearchRepo,
	indexer searchsync.IndexerGW,
	retryGW searchsync.RetryGW,
	nrApp *newrelic.Application,
) searchsync.SearchSyncUC {
	uc := &searchSyncUC{
		registry:      registry,
		repo:          repo,
		indexer:       indexer,
		retryGW:       retryGW,
		nrApp:         nrApp,
		now:           func() time.Time { return time.Now().UTC() },
		maxBatchSize:  cfg.Search.MaxBatchSize,
		flushInterval: time.Duration(cfg.Search.FlushIntervalMs) * time.Millisecond,
		maxAttempts:   cfg.Search.MaxRetryAttempts,
	}
	if uc.maxBatchSize <= 0 {
		uc.maxBatchSize = defaultMaxBatchSize
	}
	if uc.flushInterval <= 0 {
		uc.flushInterval = defaultFlushInterval
	}
	if uc.maxAttempts <= 0 {
		uc.maxAttempts = defaultMaxAttempts
	}

	retryDelay := time.Duration(cfg.Search.RetryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	uc.retryBackoff = retry.Config{
		BaseDelay:  retryDelay,
		MaxDelay:   maxRetryDelay,
		Multiplier: 2,
		Jitter:     true,
	}
	return uc
}

// Start makes the processor accept requests
func (uc *searchSyncUC) Start() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.started = true
	logger.Info("Search sync processor started",
		logger.Int("max_batch_size", uc.maxBatchSize),
		logger.Duration("flush_interval", uc.flushInterval))
}

// AddToQueue enqueues req. A full batch is processed right away, otherwise the
// flush timer is armed unless a batch is already running.
func (uc *searchSyncUC) AddToQueue(req models.SearchRequest) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.started {
		return models.ErrProcessorStopped
	}

	uc.queue = append(uc.queue, req)
	uc.stats.Queued++

	if len(uc.queue) >= uc.maxBatchSize {
		uc.triggerLocked()
		return nil
	}
	if !uc.processing && uc.timer == nil {
		uc.timer = time.AfterFunc(uc.flushInterval, uc.onTimer)
	}
	return nil
}

func (uc *searchSyncUC) onTimer() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.timer = nil
	uc.triggerLocked()
}

// triggerLocked starts the process loop unless one is running. Callers hold mu.
func (uc *searchSyncUC) triggerLocked() {
	if uc.timer != nil {
		uc.timer.Stop()
		uc.timer = nil
	}
	if uc.processing || len(uc.queue) == 0 {
		return
	}

	uc.processing = true
	uc.idle = make(chan struct{})
	go uc.processLoop()
}

// processLoop takes batches off the queue until it is empty
func (uc *searchSyncUC) processLoop() {
	for {
		uc.mu.Lock()
		if len(uc.queue) == 0 {
			uc.processing = false
			close(uc.idle)
			uc.mu.Unlock()
			return
		}

		n := min(len(uc.queue), uc.maxBatchSize)
		batch := make([]models.SearchRequest, n)
		copy(batch, uc.queue[:n])
		uc.queue = uc.queue[n:]
		if len(uc.queue) == 0 {
			uc.queue = nil
		}
		uc.mu.Unlock()

		uc.processBatch(batch)
	}
}

func (uc *searchSyncUC) processBatch(batch []models.SearchRequest) {
	ctx, end := nrpkg.StartBackgroundTransaction(context.Background(), uc.nrApp, "SearchSync.ProcessBatch")

	start := time.Now()
	outcome, err := uc.process(ctx, batch)
	end(err)

	uc.mu.Lock()
	uc.stats.Batches++
	uc.stats.Indexed += outcome.indexed
	uc.stats.Deleted += outcome.deleted
	uc.stats.Failed += outcome.failed
	uc.stats.Retried += outcome.retried
	uc.stats.Dropped += outcome.dropped
	uc.mu.Unlock()

	fields := []logger.Field{
		logger.Int("requests", len(batch)),
		logger.Int64("indexed", outcome.indexed),
		logger.Int64("deleted", outcome.deleted),
		logger.Int64("failed", outcome.failed),
		logger.Int64("retried", outcome.retried),
		logger.Int64("dropped", outcome.dropped),
		logger.Duration("duration", time.Since(start)),
	}
	if err != nil {
		logger.WarnCtx(ctx, "Search sync batch completed with errors", append(fields, logger.Err(err))...)
		return
	}
	logger.DebugCtx(ctx, "Search sync batch completed", fields...)
}

// Flush processes everything queued so far and waits for it
func (uc *searchSyncUC) Flush(ctx context.Context) error {
	for {
		uc.mu.Lock()
		uc.triggerLocked()
		if !uc.processing {
			uc.mu.Unlock()
			return nil
		}
		idle := uc.idle
		uc.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// FlushAndClose stops accepting requests, then drains the queue
func (uc *searchSyncUC) FlushAndClose(ctx context.Context) error {
	uc.mu.Lock()
	uc.started = false
	uc.mu.Unlock()

	if err := uc.Flush(ctx); err != nil {
		logger.Error("Search sync processor closed before the queue drained", logger.Err(err))
		return err
	}
	logger.Info("Search sync processor closed")
	return nil
}

// Stats returns a snapshot of the processor counters
func (uc *searchSyncUC) Stats() models.SearchSyncStats {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	stats := uc.stats
	stats.Started = uc.started
	stats.Processing = uc.processing
	stats.QueueLength = len(uc.queue)
	return stats
}
