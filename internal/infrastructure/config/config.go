package config

import (
	"fmt"
	"time"
)

// Config is the full process configuration, unmarshalled from yaml with
// env overrides. It stays a plain leaf: the cmd wiring maps these values
// onto the adapter and service config types.
type Config struct {
	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`

	Server struct {
		Port            int           `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Postgres struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Database string `mapstructure:"database"`
		SSLMode  string `mapstructure:"ssl_mode"`
	} `mapstructure:"postgres"`

	Redis struct {
		Host        string        `mapstructure:"host"`
		Port        int           `mapstructure:"port"`
		Password    string        `mapstructure:"password"`
		DB          int           `mapstructure:"db"`
		SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
	} `mapstructure:"redis"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	SourceTTL   time.Duration `mapstructure:"source_ttl"`

	Tracker TrackerConfig `mapstructure:"tracker"`
	Poller  PollerConfig  `mapstructure:"poller"`

	Sources struct {
		Stonfi StonfiConfig `mapstructure:"stonfi"`
		Weex   WeexConfig   `mapstructure:"weex"`
		Rates  RatesConfig  `mapstructure:"rates"`
	} `mapstructure:"sources"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

type TrackerConfig struct {
	SnapshotTTL        time.Duration `mapstructure:"snapshot_ttl"`
	EnrichWindow       time.Duration `mapstructure:"enrich_window"`
	EnrichLimit        int           `mapstructure:"enrich_limit"`
	ArbitrageThreshold float64       `mapstructure:"arbitrage_threshold"`
}

type PollerConfig struct {
	Interval           time.Duration `mapstructure:"interval"`
	Cooldown           time.Duration `mapstructure:"cooldown"`
	ChangeThreshold    float64       `mapstructure:"change_threshold"`
	ArbitrageThreshold float64       `mapstructure:"arbitrage_threshold"`
	RetentionAge       time.Duration `mapstructure:"retention_age"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
}

type StonfiConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	HolderContract string `mapstructure:"holder_contract"`
	TONContract    string `mapstructure:"ton_contract"`
	HolderDecimals int32  `mapstructure:"holder_decimals"`
	TONDecimals    int32  `mapstructure:"ton_decimals"`
	Pair           string `mapstructure:"pair"`
}

type WeexConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	SymbolID int    `mapstructure:"symbol_id"`
	Pair     string `mapstructure:"pair"`
}

type RatesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User,
		c.Postgres.Password, c.Postgres.Database, c.Postgres.SSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
