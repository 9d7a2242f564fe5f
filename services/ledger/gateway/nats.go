package gateway

import (
	"context"
	"fmt"

	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/models"
	natspkg "github.com/opencollective/ledger/internal/pkg/nats"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/services/ledger"
)

// ledgerGW publishes ledger events to JetStream
type ledgerGW struct {
	natsClient *natspkg.Client
}

// NewLedgerGW creates a new NATS gateway instance
func NewLedgerGW(client *natspkg.Client) ledger.LedgerGW {
	return &ledgerGW{
		natsClient: client,
	}
}

func (g *ledgerGW) publish(ctx context.Context, subject string, v interface{}) error {
	defer nrpkg.StartMessageProducerSegment(ctx, "NATS", subject)()
	return g.natsClient.PublishJSON(ctx, subject, v)
}

// PublishTransactionsRecorded publishes newly recorded rows of a group
func (g *ledgerGW) PublishTransactionsRecorded(ctx context.Context, event *models.LedgerEvent) error {
	return g.publish(ctx, constants.SubjectTransactionsRecorded, event)
}

// PublishTransactionsRefunded publishes the rows of a refund group
func (g *ledgerGW) PublishTransactionsRefunded(ctx context.Context, event *models.LedgerEvent) error {
	return g.publish(ctx, constants.SubjectTransactionsRefunded, event)
}

// PublishSettlementEvent publishes an invoice status change
func (g *ledgerGW) PublishSettlementEvent(ctx context.Context, event *models.SettlementEvent) error {
	switch event.Status {
	case models.SettlementInvoiced:
		return g.publish(ctx, constants.SubjectSettlementInvoiced, event)
	case models.SettlementSettled:
		return g.publish(ctx, constants.SubjectSettlementSettled, event)
	default:
		return fmt.Errorf("no subject for settlement status %q", event.Status)
	}
}
