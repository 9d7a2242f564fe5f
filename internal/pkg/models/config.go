package models

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	NSQ      NSQConfig
	Search   SearchConfig
	Ledger   LedgerConfig
	NewRelic NewRelicConfig
	Logger   LoggerConfig
	APIKeys  APIKeyConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// NSQConfig contains nsqd connection configuration
type NSQConfig struct {
	Address        string
	LookupdAddress string
	Channel        string
}

// SearchConfig configures the search cluster and the sync batch processor
type SearchConfig struct {
	Engine           string
	URL              string
	Username         string
	Password         string
	IndexPrefix      string
	MaxBatchSize     int
	FlushIntervalMs  int
	MaxRetryAttempts int
	RetryDelayMs     int
	RateLimit        int
	RateLimitPeriod  int // in seconds
}

// LedgerConfig contains ledger accounting configuration
type LedgerConfig struct {
	PlatformCollectiveID         int64
	PaymentProcessorCollectiveID int64
	SettlementCron               string
	BalanceCacheTTL              int // in seconds
	GroupLockTTL                 int // in seconds
}

// NewRelicConfig contains New Relic APM configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	LogsEnabled bool
	ForwardLogs bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level      string
	FilePath   string
	MaxSize    int64
	MaxAge     int
	MaxBackups int
	Compress   bool
	Type       string
}

// APIKeyConfig holds the keys accepted on internal routes
type APIKeyConfig struct {
	Ledger     string
	SearchSync string
	Operator   string
}
