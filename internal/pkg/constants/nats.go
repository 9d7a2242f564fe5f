package constants

// JetStream streams and consumers
const (
	StreamLedger       = "LEDGER_STREAM"
	ConsumerSearchSync = "search-sync"
)

// NATS Subjects
const (
	SubjectLedgerAll       = "ledger.>"
	SubjectTransactionsAll = "ledger.transactions.>"

	// Ledger Service
	SubjectTransactionsRecorded = "ledger.transactions.recorded"
	SubjectTransactionsRefunded = "ledger.transactions.refunded"

	// Settlements
	SubjectSettlementInvoiced = "ledger.settlement.invoiced"
	SubjectSettlementSettled  = "ledger.settlement.settled"
)
