// Package listener feeds Postgres change notifications into the search sync processor.
package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/database"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/pkg/retry"
	"github.com/opencollective/ledger/services/searchsync"
)

// a connection that lived this long starts the backoff over
const stableConnection = time.Minute

// NotificationSource is a Postgres connection able to LISTEN
type NotificationSource interface {
	Listen(ctx context.Context, channel string, handler database.NotificationHandler) error
}

// Listener forwards search sync notifications to the batch processor
type Listener struct {
	source   NotificationSource
	searchUC searchsync.SearchSyncUC
	channel  string
	backoff  retry.Config
}

// NewListener creates a listener on the search sync channel
func NewListener(source NotificationSource, searchUC searchsync.SearchSyncUC) *Listener {
	return &Listener{
		source:   source,
		searchUC: searchUC,
		channel:  constants.ChannelSearchSync,
		backoff: retry.Config{
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   30 * time.Second,
			Multiplier: 2,
			Jitter:     true,
		},
	}
}

// Run listens until ctx is done, reconnecting with exponential backoff
func (l *Listener) Run(ctx context.Context) error {
	attempt := 0
	for {
		connectedAt := time.Now()
		logger.Info("Listening for search sync notifications", logger.String("channel", l.channel))

		err := l.source.Listen(ctx, l.channel, l.handle)
		if ctx.Err() != nil {
			logger.Info("Search sync listener stopped")
			return nil
		}

		if time.Since(connectedAt) >= stableConnection {
			attempt = 0
		}
		delay := retry.Backoff(l.backoff, attempt)
		attempt++

		logger.Warn("Search sync listener disconnected, reconnecting",
			logger.Err(err),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (l *Listener) handle(n database.Notification) {
	var req models.SearchRequest
	if err := json.Unmarshal([]byte(n.Payload), &req); err != nil {
		logger.Warn("Ignoring malformed search sync notification",
			logger.String("payload", n.Payload),
			logger.Err(err))
		return
	}

	if err := l.searchUC.AddToQueue(req); err != nil {
		logger.Error("Failed to enqueue search sync notification",
			logger.String("type", string(req.Type)),
			logger.String("table", req.Table),
			logger.Int64("id", req.Payload.ID),
			logger.Err(err))
	}
}
