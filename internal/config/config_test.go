package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Places.MaxResults)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 10, cfg.Mission.MaxLeads)
	assert.Equal(t, 0, cfg.Mission.MinScore)
	assert.Equal(t, 15, cfg.Mission.EnrichLimit)
	assert.Equal(t, 5, cfg.Mission.Parallelism)
	assert.Equal(t, 10, cfg.Audit.FetchTimeoutSecs)
	assert.Equal(t, 5, cfg.Audit.BodyTimeoutSecs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
  database_url: leads.db
log:
  level: debug
  format: console
server:
  port: 9090
mission:
  max_leads: 25
  min_score: 60
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leads.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Mission.MaxLeads)
	assert.Equal(t, 60, cfg.Mission.MinScore)
	// Defaults still apply for unset values
	assert.Equal(t, 15, cfg.Mission.EnrichLimit)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADSCOUT_STORE_DRIVER", "postgres")
	t.Setenv("LEADSCOUT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LEADSCOUT_SERVER_PORT", "3000")
	t.Setenv("LEADSCOUT_PLACES_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Places.APIKey)
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "leads.db"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateMission(t *testing.T) {
	cfg := validDefaults()
	cfg.Places.APIKey = "key"
	assert.NoError(t, cfg.Validate("mission"))

	cfg.Places.APIKey = ""
	err := cfg.Validate("mission")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "places.api_key is required")
}

func TestValidateMission_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Places.APIKey = "key"
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("mission")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateExport(t *testing.T) {
	cfg := validDefaults()
	cfg.Notion.Token = "ntn_token"
	cfg.Notion.DatabaseID = "db-id"
	assert.NoError(t, cfg.Validate("export"))

	cfg.Notion.DatabaseID = ""
	err := cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notion.database_id is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Places.APIKey = "key"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
