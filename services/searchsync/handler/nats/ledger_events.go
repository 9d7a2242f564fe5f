package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/opencollective/ledger/internal/pkg/logger"
	"github.com/opencollective/ledger/internal/pkg/models"
	natspkg "github.com/opencollective/ledger/internal/pkg/nats"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/searchsync"
)

// LedgerEventHandler indexes the transactions announced on the ledger stream
type LedgerEventHandler struct {
	searchUC   searchsync.SearchSyncUC
	natsClient *natspkg.Client
	nrApp      *newrelic.Application
}

// NewLedgerEventHandler creates a new ledger event consumer
func NewLedgerEventHandler(
	searchUC searchsync.SearchSyncUC,
	client *natspkg.Client,
	nrApp *newrelic.Application,
) *LedgerEventHandler {
	return &LedgerEventHandler{
		searchUC:   searchUC,
		natsClient: client,
		nrApp:      nrApp,
	}
}

// InitNATSConsumers starts the durable search sync consumer on the ledger stream
func (h *LedgerEventHandler) InitNATSConsumers(ctx context.Context) error {
	return h.natsClient.Consume(ctx, natspkg.SearchSyncConsumerConfig(), h.handleLedgerEventJS)
}

func (h *LedgerEventHandler) handleLedgerEventJS(msg jetstream.Msg) error {
	ctx, end := nrpkg.StartBackgroundTransaction(context.Background(), h.nrApp, "NATS.SearchSync.HandleLedgerEvent")
	err := h.handleLedgerEvent(ctx, msg.Subject(), msg.Data())
	end(err)
	// an error naks the message for redelivery
	return err
}

func (h *LedgerEventHandler) handleLedgerEvent(ctx context.Context, subject string, data []byte) error {
	var event models.LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// redelivery cannot fix it
		logger.ErrorCtx(ctx, "Dropping malformed ledger event",
			logger.String("subject", subject),
			logger.Err(err))
		return nil
	}

	if err := h.searchUC.HandleLedgerEvent(ctx, &event); err != nil {
		logger.WarnCtx(ctx, "Failed to enqueue ledger event for indexing",
			logger.String("subject", subject),
			logger.Stringer("transaction_group", event.TransactionGroup),
			logger.Err(err))
		return err
	}

	logger.DebugCtx(ctx, "Enqueued ledger event for indexing",
		logger.String("subject", subject),
		logger.Stringer("transaction_group", event.TransactionGroup),
		logger.Int("transactions", len(event.TransactionIDs)))
	return nil
}
