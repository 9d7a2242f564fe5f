package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg := InitConfig("")

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "elasticsearch", cfg.Search.Engine)
	assert.Equal(t, 1000, cfg.Search.MaxBatchSize)
	assert.Equal(t, 5000, cfg.Search.FlushIntervalMs)
	assert.Equal(t, 5, cfg.Search.MaxRetryAttempts)
	assert.Equal(t, "0 2 1 * *", cfg.Ledger.SettlementCron)
	assert.Equal(t, int64(8686), cfg.Ledger.PlatformCollectiveID)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestInitConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("SEARCH_INDEX_PREFIX", "prod_")
	t.Setenv("SEARCH_ENGINE", "OpenSearch")
	t.Setenv("LEDGER_PLATFORM_COLLECTIVE_ID", "42")
	t.Setenv("NEW_RELIC_ENABLED", "true")
	t.Setenv("LEDGER_API_KEY", "secret")

	cfg := InitConfig("does-not-matter.env")

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "prod_", cfg.Search.IndexPrefix)
	assert.Equal(t, "opensearch", cfg.Search.Engine)
	assert.Equal(t, int64(42), cfg.Ledger.PlatformCollectiveID)
	assert.True(t, cfg.NewRelic.Enabled)
	assert.Equal(t, "secret", cfg.APIKeys.Ledger)
}

func TestInitConfig_LocalEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=ledger-from-file\nREDIS_PORT=6390\n"), 0o600))

	t.Setenv("APP_ENV", "local")
	// godotenv never overrides variables that are already set, so make sure these are not
	t.Setenv("APP_NAME", "")
	t.Setenv("REDIS_PORT", "")
	os.Unsetenv("APP_NAME")
	os.Unsetenv("REDIS_PORT")
	t.Cleanup(func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("REDIS_PORT")
	})

	cfg := InitConfig(path)

	assert.Equal(t, "ledger-from-file", cfg.App.Name)
	assert.Equal(t, 6390, cfg.Redis.Port)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("LEDGER_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("LEDGER_TEST_KEY", "default"))
	assert.Equal(t, "default", GetEnv("LEDGER_TEST_MISSING_KEY", "default"))
}
