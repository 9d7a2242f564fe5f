package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/searchsync"
)

// deferredPublisher is the part of the NSQ producer used for retries
type deferredPublisher interface {
	DeferredPublishJSON(topic string, delay time.Duration, message interface{}) error
}

type retryGW struct {
	producer deferredPublisher
}

// NewRetryGW creates a gateway publishing failed requests to the NSQ retry topic
func NewRetryGW(producer deferredPublisher) searchsync.RetryGW {
	return &retryGW{producer: producer}
}

// PublishRetry publishes msg so that it is delivered after delay
func (g *retryGW) PublishRetry(ctx context.Context, msg *models.SearchRetryMessage, delay time.Duration) error {
	defer nrpkg.StartMessageProducerSegment(ctx, "NSQ", constants.TopicSearchSyncRetry)()

	if err := g.producer.DeferredPublishJSON(constants.TopicSearchSyncRetry, delay, msg); err != nil {
		return fmt.Errorf("failed to publish %d requests for retry: %w", len(msg.Requests), err)
	}
	return nil
}
