package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "postgres:\n  user: holder\n  password: secret\n  database: holder_bot\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Tracker.SnapshotTTL)
	assert.Equal(t, 24*time.Hour, cfg.Tracker.EnrichWindow)
	assert.Equal(t, 1000, cfg.Tracker.EnrichLimit)
	assert.Equal(t, 60*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 5.0, cfg.Poller.ChangeThreshold)
	assert.Equal(t, 2.0, cfg.Poller.ArbitrageThreshold)
	assert.Equal(t, 720*time.Hour, cfg.Poller.RetentionAge)
	assert.Equal(t, "https://api.ston.fi", cfg.Sources.Stonfi.BaseURL)
	assert.EqualValues(t, 9, cfg.Sources.Stonfi.HolderDecimals)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
tracker:
  snapshot_ttl: 10s
sources:
  weex:
    symbol_id: 36380
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Tracker.SnapshotTTL)
	assert.Equal(t, 36380, cfg.Sources.Weex.SymbolID)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("HOLDER_POSTGRES_HOST", "db.internal")
	t.Setenv("BOT_TOKEN", "123456:test-token")
	t.Setenv("ALERT_CHAT_ID", "-1001234567890")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "123456:test-token", cfg.Telegram.Token)
	assert.Equal(t, int64(-1001234567890), cfg.Telegram.ChatID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConnectionStrings(t *testing.T) {
	path := writeConfig(t, `
postgres:
  host: db
  port: 5433
  user: holder
  password: secret
  database: holder_bot
redis:
  host: cache
  port: 6380
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t,
		"host=db port=5433 user=holder password=secret dbname=holder_bot sslmode=disable",
		cfg.PostgresDSN())
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}
