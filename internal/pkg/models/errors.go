package models

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrGroupNotFound       = errors.New("transaction group not found")
	ErrAlreadyRefunded     = errors.New("transaction already refunded")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLockNotAcquired     = errors.New("lock not acquired")
	ErrNoOwedSettlements   = errors.New("no owed settlements")
	ErrInvoiceNotFound     = errors.New("settlement invoice not found")
	ErrUnknownIndex        = errors.New("unknown search index")
	ErrProcessorStopped    = errors.New("batch processor is not started")
)
