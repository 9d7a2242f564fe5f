package constants

// Redis key formats
const (
	// Ledger Service
	KeyCollectiveBalance = "ledger:balance:%d"         // Format: ledger:balance:{collective_id}
	KeyGroupLock         = "ledger:lock:group:%s"      // Format: ledger:lock:group:{transaction_group}
	KeyCollectiveLock    = "ledger:lock:collective:%d" // Format: ledger:lock:collective:{collective_id}
	KeySettlementLock    = "ledger:lock:settlement:%s" // Format: ledger:lock:settlement:{yyyy-mm}

	// Rate Limiting
	KeyRateLimit = "rate:limit:%s:%s" // Format: rate:limit:{resource}:{ip}
)
