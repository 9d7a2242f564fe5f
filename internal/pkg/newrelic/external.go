package newrelic

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// StartDatastoreSegment starts a Postgres segment. The returned end func is never nil.
func StartDatastoreSegment(ctx context.Context, collection, operation string) func() {
	txn := FromContext(ctx)
	if txn == nil {
		return func() {}
	}
	segment := &newrelic.DatastoreSegment{
		StartTime:  txn.StartSegmentNow(),
		Product:    newrelic.DatastorePostgres,
		Collection: collection,
		Operation:  operation,
	}
	return segment.End
}

// WithExternalSegment executes a call to an external service within a New Relic external segment
func WithExternalSegment(ctx context.Context, library, operation, url string, fn func() error) error {
	txn := FromContext(ctx)
	if txn == nil {
		return fn()
	}

	segment := &newrelic.ExternalSegment{
		StartTime: txn.StartSegmentNow(),
		URL:       url,
		Procedure: operation,
		Library:   library,
	}
	defer segment.End()

	err := fn()
	if err != nil {
		txn.NoticeError(err)
	}
	return err
}

// StartMessageProducerSegment starts a segment for a message published to a topic. The returned end func is never nil.
func StartMessageProducerSegment(ctx context.Context, library, destination string) func() {
	txn := FromContext(ctx)
	if txn == nil {
		return func() {}
	}
	segment := &newrelic.MessageProducerSegment{
		StartTime:       txn.StartSegmentNow(),
		Library:         library,
		DestinationType: newrelic.MessageTopic,
		DestinationName: destination,
	}
	return segment.End
}
