package newrelic

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// FromEchoContext extracts New Relic transaction from Echo context
func FromEchoContext(c echo.Context) *newrelic.Transaction {
	return nrecho.FromContext(c)
}

// FromContext extracts New Relic transaction from standard context
func FromContext(ctx context.Context) *newrelic.Transaction {
	return newrelic.FromContext(ctx)
}

// StartBackgroundTransaction starts a non-web transaction for workers, listeners and cron jobs.
// The returned context carries the transaction. end is safe to call when nrApp is nil.
func StartBackgroundTransaction(ctx context.Context, nrApp *newrelic.Application, name string) (context.Context, func(err error)) {
	if nrApp == nil {
		return ctx, func(error) {}
	}
	txn := nrApp.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), func(err error) {
		if err != nil {
			txn.NoticeError(err)
		}
		txn.End()
	}
}

// WithSegment executes a function within a New Relic segment
func WithSegment(ctx context.Context, segmentName string, fn func() error) error {
	if txn := FromContext(ctx); txn != nil {
		defer txn.StartSegment(segmentName).End()
	}
	return fn()
}

// TraceUseCase wraps a use case method with automatic segment creation
func TraceUseCase(ctx context.Context, useCaseName string, fn func(context.Context) error) error {
	return WithSegment(ctx, useCaseName, func() error {
		return fn(ctx)
	})
}

// TraceUseCaseWithReturn wraps a use case method that returns a value
func TraceUseCaseWithReturn[T any](ctx context.Context, useCaseName string, fn func(context.Context) (T, error)) (T, error) {
	if txn := FromContext(ctx); txn != nil {
		defer txn.StartSegment(useCaseName).End()
	}
	return fn(ctx)
}

// TraceHandler names the transaction after the handler and reports its error
func TraceHandler(handlerName string, handler echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		txn := FromEchoContext(c)
		if txn != nil {
			txn.SetName(handlerName)
		}

		err := handler(c)
		if err != nil && txn != nil {
			txn.NoticeError(err)
		}
		return err
	}
}
