package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// AddAttribute adds a custom attribute to the current transaction
func AddAttribute(c echo.Context, key string, value interface{}) {
	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		txn.AddAttribute(key, value)
	}
}

// NoticeError reports an error to New Relic
func NoticeError(c echo.Context, err error) {
	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		txn.NoticeError(err)
	}
}

// SetCollectiveID tags the transaction with the collective being read or written
func SetCollectiveID(c echo.Context, collectiveID int64) {
	AddAttribute(c, "collective.id", collectiveID)
}

// SetTransactionGroup tags the transaction with a ledger transaction group
func SetTransactionGroup(c echo.Context, group string) {
	AddAttribute(c, "ledger.transaction_group", group)
}
