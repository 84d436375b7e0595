package config

import (
	"time"

	"portfolio-tracker/pkg/config"
)

// Storage holds configuration for the position store.
type Storage struct {
	Driver string `mapstructure:"driver"` // "file" or "postgres"
	File   string `mapstructure:"file"`   // path of the JSON file for the file driver
}

// PriceCache holds configuration for the price cache.
type PriceCache struct {
	Backend string        `mapstructure:"backend"` // "memory" or "redis"
	TTL     time.Duration `mapstructure:"ttl"`
}

// Provider holds configuration for the market data provider.
type Provider struct {
	Driver string `mapstructure:"driver"` // "yahoo" or "alpaca"
}

// YahooFinance holds the configuration for the Yahoo Finance chart API.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Refresher holds configuration for the scheduled background price refresh.
type Refresher struct {
	Enabled       bool   `mapstructure:"enabled"`
	Schedule      string `mapstructure:"schedule"` // cron expression
	NotifySummary bool   `mapstructure:"notify_summary"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the tracker.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Storage      Storage         `mapstructure:"storage"`
	PriceCache   PriceCache      `mapstructure:"price_cache"`
	Provider     Provider        `mapstructure:"provider"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Refresher    Refresher       `mapstructure:"refresher"`
	Telegram     Telegram        `mapstructure:"telegram"`
}

// Load loads the tracker configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.File == "" {
		cfg.Storage.File = "portfolio_data.json"
	}
	if cfg.PriceCache.Backend == "" {
		cfg.PriceCache.Backend = "memory"
	}
	if cfg.PriceCache.TTL == 0 {
		cfg.PriceCache.TTL = 5 * time.Minute
	}
	if cfg.Provider.Driver == "" {
		cfg.Provider.Driver = "yahoo"
	}
	return &cfg, nil
}
