package nsq

import (
	"context"
	"errors"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	nsqpkg "github.com/opencollective/ledger/internal/pkg/nsq"
	"github.com/opencollective/ledger/services/searchsync"
)

// deliveries nsqd makes of one retry message when the processor refuses it
const maxDeliveries = 10

// RetryHandler consumes the search sync retry topic
type RetryHandler struct {
	searchUC searchsync.SearchSyncUC
	cfg      *models.Config
	nrApp    *newrelic.Application
	consumer *nsqpkg.Consumer
}

// NewRetryHandler creates a new retry topic handler
func NewRetryHandler(searchUC searchsync.SearchSyncUC, cfg *models.Config, nrApp *newrelic.Application) *RetryHandler {
	return &RetryHandler{
		searchUC: searchUC,
		cfg:      cfg,
		nrApp:    nrApp,
	}
}

// Start connects the consumer
func (h *RetryHandler) Start() error {
	channel := h.cfg.NSQ.Channel
	if channel == "" {
		channel = constants.ChannelSearchSyncRetry
	}

	consumer, err := nsqpkg.NewConsumer(constants.TopicSearchSyncRetry, channel, maxDeliveries, h.HandleMessage)
	if err != nil {
		return err
	}
	if err := consumer.Connect(h.cfg.NSQ.Address, h.cfg.NSQ.LookupdAddress); err != nil {
		return err
	}
	h.consumer = consumer

	logger.Info("Search sync retry consumer started",
		logger.String("topic", constants.TopicSearchSyncRetry),
		logger.String("channel", channel))
	return nil
}

// Stop stops the consumer
func (h *RetryHandler) Stop() {
	if h.consumer != nil {
		h.consumer.Stop()
	}
}

// HandleMessage re-enqueues a retry message. Malformed messages are dropped;
// a stopped processor requeues the message.
func (h *RetryHandler) HandleMessage(body []byte) error {
	ctx, end := nrpkg.StartBackgroundTransaction(context.Background(), h.nrApp, "NSQ.SearchSync.HandleRetry")

	var msg models.SearchRetryMessage
	if err := nsqpkg.UnmarshalMessage(body, &msg); err != nil {
		logger.ErrorCtx(ctx, "Dropping malformed search sync retry message", logger.Err(err))
		end(err)
		return nil
	}

	err := h.searchUC.HandleRetry(ctx, &msg)
	end(err)
	if err != nil {
		if !errors.Is(err, models.ErrProcessorStopped) {
			logger.ErrorCtx(ctx, "Failed to re-enqueue search sync retry",
				logger.Int("attempt", msg.Attempt),
				logger.Err(err))
		}
		return err
	}

	logger.InfoCtx(ctx, "Re-enqueued search sync retry",
		logger.Int("requests", len(msg.Requests)),
		logger.Int("attempt", msg.Attempt),
		logger.Time("failed_at", msg.FailedAt))
	return nil
}
