package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/spf13/viper"
)

// InitConfig loads configuration for a service. Outside of APP_ENV=local the
// environment is the only source; locally the given .env file is loaded first.
func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" && configPath != "" {
		if err := godotenv.Load(configPath); err != nil {
			log.Println("error loading config from file", err)
		}
	}
	return loadConfig(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_DEBUG", true)

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("NATS_URL", "nats://localhost:4222")

	v.SetDefault("NSQ_ADDRESS", "localhost:4150")
	v.SetDefault("NSQ_CHANNEL", "search-sync")

	v.SetDefault("SEARCH_ENGINE", "elasticsearch")
	v.SetDefault("SEARCH_URL", "http://localhost:9200")
	v.SetDefault("SEARCH_MAX_BATCH_SIZE", 1000)
	v.SetDefault("SEARCH_FLUSH_INTERVAL_MS", 5000)
	v.SetDefault("SEARCH_MAX_RETRY_ATTEMPTS", 5)
	v.SetDefault("SEARCH_RETRY_DELAY_MS", 10000)
	v.SetDefault("SEARCH_RATE_LIMIT", 60)
	v.SetDefault("SEARCH_RATE_LIMIT_PERIOD", 60)

	v.SetDefault("LEDGER_PLATFORM_COLLECTIVE_ID", 8686)
	v.SetDefault("LEDGER_PAYMENT_PROCESSOR_COLLECTIVE_ID", 0)
	v.SetDefault("LEDGER_SETTLEMENT_CRON", "0 2 1 * *")
	v.SetDefault("LEDGER_BALANCE_CACHE_TTL", 300)
	v.SetDefault("LEDGER_GROUP_LOCK_TTL", 30)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE_PATH", "")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_AGE", 7)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_COMPRESS", true)
	v.SetDefault("LOG_TYPE", "stdout")
}

func loadConfig(v *viper.Viper) *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = v.GetString("APP_NAME")
	configs.App.Environment = v.GetString("APP_ENV")
	configs.App.Debug = v.GetBool("APP_DEBUG")
	configs.App.Version = v.GetString("APP_VERSION")

	// Server config
	configs.Server.Host = v.GetString("SERVER_HOST")
	configs.Server.Port = v.GetInt("SERVER_PORT")
	configs.Server.ReadTimeout = v.GetInt("SERVER_READ_TIMEOUT")
	configs.Server.WriteTimeout = v.GetInt("SERVER_WRITE_TIMEOUT")
	configs.Server.ShutdownTimeout = v.GetInt("SERVER_SHUTDOWN_TIMEOUT")

	// Database config
	configs.Database.Driver = v.GetString("DB_DRIVER")
	configs.Database.Host = v.GetString("DB_HOST")
	configs.Database.Port = v.GetInt("DB_PORT")
	configs.Database.Username = v.GetString("DB_USERNAME")
	configs.Database.Password = v.GetString("DB_PASSWORD")
	configs.Database.Database = v.GetString("DB_DATABASE")
	configs.Database.SSLMode = v.GetString("DB_SSL_MODE")
	configs.Database.MaxConns = v.GetInt("DB_MAX_CONNS")
	configs.Database.IdleConns = v.GetInt("DB_IDLE_CONNS")

	// Redis config
	configs.Redis.Host = v.GetString("REDIS_HOST")
	configs.Redis.Port = v.GetInt("REDIS_PORT")
	configs.Redis.Password = v.GetString("REDIS_PASSWORD")
	configs.Redis.DB = v.GetInt("REDIS_DB")
	configs.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	// NATS config
	configs.NATS.URL = v.GetString("NATS_URL")

	// NSQ config
	configs.NSQ.Address = v.GetString("NSQ_ADDRESS")
	configs.NSQ.LookupdAddress = v.GetString("NSQ_LOOKUPD_ADDRESS")
	configs.NSQ.Channel = v.GetString("NSQ_CHANNEL")

	// Search config
	configs.Search.Engine = strings.ToLower(v.GetString("SEARCH_ENGINE"))
	configs.Search.URL = v.GetString("SEARCH_URL")
	configs.Search.Username = v.GetString("SEARCH_USERNAME")
	configs.Search.Password = v.GetString("SEARCH_PASSWORD")
	configs.Search.IndexPrefix = v.GetString("SEARCH_INDEX_PREFIX")
	configs.Search.MaxBatchSize = v.GetInt("SEARCH_MAX_BATCH_SIZE")
	configs.Search.FlushIntervalMs = v.GetInt("SEARCH_FLUSH_INTERVAL_MS")
	configs.Search.MaxRetryAttempts = v.GetInt("SEARCH_MAX_RETRY_ATTEMPTS")
	configs.Search.RetryDelayMs = v.GetInt("SEARCH_RETRY_DELAY_MS")
	configs.Search.RateLimit = v.GetInt("SEARCH_RATE_LIMIT")
	configs.Search.RateLimitPeriod = v.GetInt("SEARCH_RATE_LIMIT_PERIOD")

	// Ledger config
	configs.Ledger.PlatformCollectiveID = v.GetInt64("LEDGER_PLATFORM_COLLECTIVE_ID")
	configs.Ledger.PaymentProcessorCollectiveID = v.GetInt64("LEDGER_PAYMENT_PROCESSOR_COLLECTIVE_ID")
	configs.Ledger.SettlementCron = v.GetString("LEDGER_SETTLEMENT_CRON")
	configs.Ledger.BalanceCacheTTL = v.GetInt("LEDGER_BALANCE_CACHE_TTL")
	configs.Ledger.GroupLockTTL = v.GetInt("LEDGER_GROUP_LOCK_TTL")

	// NewRelic config
	configs.NewRelic.LicenseKey = v.GetString("NEW_RELIC_LICENSE_KEY")
	configs.NewRelic.AppName = v.GetString("NEW_RELIC_APP_NAME")
	configs.NewRelic.Enabled = v.GetBool("NEW_RELIC_ENABLED")
	configs.NewRelic.LogsEnabled = v.GetBool("NEW_RELIC_LOGS_ENABLED")
	configs.NewRelic.ForwardLogs = v.GetBool("NEW_RELIC_FORWARD_LOGS")

	// Logger config
	configs.Logger.Level = v.GetString("LOG_LEVEL")
	configs.Logger.FilePath = v.GetString("LOG_FILE_PATH")
	configs.Logger.MaxSize = v.GetInt64("LOG_MAX_SIZE")
	configs.Logger.MaxAge = v.GetInt("LOG_MAX_AGE")
	configs.Logger.MaxBackups = v.GetInt("LOG_MAX_BACKUPS")
	configs.Logger.Compress = v.GetBool("LOG_COMPRESS")
	configs.Logger.Type = v.GetString("LOG_TYPE")

	// API keys for internal routes
	configs.APIKeys.Ledger = v.GetString("LEDGER_API_KEY")
	configs.APIKeys.SearchSync = v.GetString("SEARCH_SYNC_API_KEY")
	configs.APIKeys.Operator = v.GetString("OPERATOR_API_KEY")

	return configs
}

// GetEnv returns the environment variable or the default when unset
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
