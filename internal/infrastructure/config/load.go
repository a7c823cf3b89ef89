package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the yaml config and applies environment overrides. A local
// .env file is honored when present (deployments set real env vars).
// Env names follow HOLDER_SECTION_KEY, e.g. HOLDER_POSTGRES_HOST; the
// bot token additionally reads the conventional BOT_TOKEN.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("HOLDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	_ = v.BindEnv("telegram.token", "BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "ALERT_CHAT_ID")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.ssl_mode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.snapshot_ttl", "5m")

	v.SetDefault("http_timeout", "15s")
	v.SetDefault("source_ttl", "30s")

	v.SetDefault("tracker.snapshot_ttl", "30s")
	v.SetDefault("tracker.enrich_window", "24h")
	v.SetDefault("tracker.enrich_limit", 1000)
	v.SetDefault("tracker.arbitrage_threshold", 2.0)

	v.SetDefault("poller.interval", "60s")
	v.SetDefault("poller.cooldown", "60s")
	v.SetDefault("poller.change_threshold", 5.0)
	v.SetDefault("poller.arbitrage_threshold", 2.0)
	v.SetDefault("poller.retention_age", "720h")
	v.SetDefault("poller.sweep_interval", "24h")

	v.SetDefault("sources.stonfi.base_url", "https://api.ston.fi")
	v.SetDefault("sources.stonfi.holder_decimals", 9)
	v.SetDefault("sources.stonfi.ton_decimals", 9)
	v.SetDefault("sources.stonfi.pair", "HOLDER/TON")
	v.SetDefault("sources.weex.base_url", "https://api.origami.tech")
	v.SetDefault("sources.weex.pair", "HOLDER/USDT")
	v.SetDefault("sources.rates.base_url", "https://tonapi.io")
	v.SetDefault("sources.rates.ttl", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
