package constants

// Search sync
const (
	// Postgres channel fed by the search_sync_notify() triggers
	ChannelSearchSync = "search_sync_requests"

	// NSQ topic holding failed bulk requests
	TopicSearchSyncRetry   = "search-sync-retry"
	ChannelSearchSyncRetry = "search-sync"

	ResourceSearch = "search"
)

// Search engines accepted by SEARCH_ENGINE
const (
	SearchEngineElasticsearch = "elasticsearch"
	SearchEngineOpenSearch    = "opensearch"
)
