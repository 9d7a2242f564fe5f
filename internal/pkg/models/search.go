package models

import "time"

// SearchRequestType is the kind of change a search sync request carries
type SearchRequestType string

const (
	SearchRequestInsert             SearchRequestType = "INSERT"
	SearchRequestUpdate             SearchRequestType = "UPDATE"
	SearchRequestDelete             SearchRequestType = "DELETE"
	SearchRequestTruncateTable      SearchRequestType = "TRUNCATE_TABLE"
	SearchRequestFullAccountRemoval SearchRequestType = "FULL_ACCOUNT_REMOVAL"
)

// SearchRequest is a single change notification, as emitted by the database triggers
type SearchRequest struct {
	Type    SearchRequestType    `json:"type"`
	Table   string               `json:"table"`
	Payload SearchRequestPayload `json:"payload"`
	Attempt int                  `json:"attempt,omitempty"` // failed deliveries so far
}

// SearchRequestPayload identifies the changed row
type SearchRequestPayload struct {
	ID int64 `json:"id"`
}

// SearchRetryMessage carries requests whose indexing failed back through the retry queue
type SearchRetryMessage struct {
	Requests []SearchRequest `json:"requests"`
	Attempt  int             `json:"attempt"`
	FailedAt time.Time       `json:"failed_at"`
}

// SearchAdapter maps a database table onto a search index
type SearchAdapter struct {
	Index         string                 `json:"index"`
	Table         string                 `json:"table"`
	Columns       []string               `json:"columns"`
	TextFields    []string               `json:"text_fields"`
	AccountFields []string               `json:"account_fields"`
	Properties    map[string]interface{} `json:"properties"`
}

// SearchDocument is an indexed row
type SearchDocument map[string]interface{}

// BulkAction is a bulk API action
type BulkAction string

const (
	BulkActionIndex  BulkAction = "index"
	BulkActionDelete BulkAction = "delete"
)

// BulkOperation is one line pair of a bulk request
type BulkOperation struct {
	Action   BulkAction     `json:"action"`
	Index    string         `json:"index"`
	ID       string         `json:"id"`
	Document SearchDocument `json:"document,omitempty"`
}

// BulkItemResult is the per-operation outcome of a bulk request
type BulkItemResult struct {
	Action BulkAction `json:"action"`
	Index  string     `json:"index"`
	ID     string     `json:"id"`
	Status int        `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Retryable reports whether the item failed for a transient reason
func (r BulkItemResult) Retryable() bool {
	return r.Status == 429 || r.Status >= 500
}

// Failed reports whether the item was rejected. Deleting a missing document is not a failure.
func (r BulkItemResult) Failed() bool {
	if r.Action == BulkActionDelete && r.Status == 404 {
		return false
	}
	return r.Status >= 300
}

// BulkResult is the outcome of a bulk request
type BulkResult struct {
	Took   int              `json:"took"`
	Errors bool             `json:"errors"`
	Items  []BulkItemResult `json:"items"`
}

// SearchQuery is a full-text query across one or more indices
type SearchQuery struct {
	Query   string   `json:"query"`
	Indices []string `json:"indices"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// SearchHit is one matched document
type SearchHit struct {
	Index  string                 `json:"index"`
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

// SearchResult is the response to a SearchQuery
type SearchResult struct {
	Total int64       `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// SearchSyncStats are the batch processor counters
type SearchSyncStats struct {
	Started     bool  `json:"started"`
	Processing  bool  `json:"processing"`
	QueueLength int   `json:"queue_length"`
	Queued      int64 `json:"queued"`
	Batches     int64 `json:"batches"`
	Indexed     int64 `json:"indexed"`
	Deleted     int64 `json:"deleted"`
	Failed      int64 `json:"failed"`
	Retried     int64 `json:"retried"`
	Dropped     int64 `json:"dropped"`
}
