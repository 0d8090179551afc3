// Package common provides shared utilities for papertrader.
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for papertrader.
type Config struct {
	Environment string        `toml:"environment"`
	Accounts    []string      `toml:"accounts"` // account names the scheduler snapshots
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Ledger      LedgerConfig  `toml:"ledger"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds path configuration for the two storage areas.
type StorageConfig struct {
	Accounts AreaConfig `toml:"accounts"` // account records + audit log (BadgerHold)
	Market   AreaConfig `toml:"market"`   // day price maps (file-based JSON)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations.
type ClientsConfig struct {
	Yahoo   YahooConfig   `toml:"yahoo"`
	Polygon PolygonConfig `toml:"polygon"`
}

// YahooConfig holds the intraday provider configuration (NSE path).
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration.
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// PolygonConfig holds the EOD/minute provider configuration.
// Plan selects the pricing tier: "eod" (default) uses the bulk grouped
// daily endpoint through the day cache, "paid" uses the minute snapshot.
type PolygonConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Plan      string `toml:"plan"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration.
func (c *PolygonConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// IsMinuteTier reports whether the minute snapshot tier is configured.
func (c *PolygonConfig) IsMinuteTier() bool {
	plan := strings.ToLower(strings.TrimSpace(c.Plan))
	return plan == "paid" || plan == "realtime"
}

// LedgerConfig holds ledger behavior configuration.
type LedgerConfig struct {
	SnapshotInterval string `toml:"snapshot_interval"` // duration string, default "60s"
}

// GetSnapshotInterval parses and returns the snapshot interval.
func (c *LedgerConfig) GetSnapshotInterval() time.Duration {
	d, err := time.ParseDuration(c.SnapshotInterval)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 4270,
		},
		Storage: StorageConfig{
			Accounts: AreaConfig{Path: "data/accounts"},
			Market:   AreaConfig{Path: "data/market"},
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Polygon: PolygonConfig{
				BaseURL:   "https://api.polygon.io",
				Plan:      "eod",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Ledger: LedgerConfig{
			SnapshotInterval: "60s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// POLYGON_API_KEY and POLYGON_PLAN are recognized without a prefix for
// compatibility with the conventional provider variable names.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PAPERTRADER_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PAPERTRADER_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PAPERTRADER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PAPERTRADER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("PAPERTRADER_DATA_PATH"); path != "" {
		config.Storage.Accounts.Path = filepath.Join(path, "accounts")
		config.Storage.Market.Path = filepath.Join(path, "market")
	}

	if key := os.Getenv("POLYGON_API_KEY"); key != "" {
		config.Clients.Polygon.APIKey = key
	}

	if plan := os.Getenv("POLYGON_PLAN"); plan != "" {
		config.Clients.Polygon.Plan = plan
	}

	if names := os.Getenv("PAPERTRADER_ACCOUNTS"); names != "" {
		var accounts []string
		for _, n := range strings.Split(names, ",") {
			if n = strings.TrimSpace(n); n != "" {
				accounts = append(accounts, n)
			}
		}
		if len(accounts) > 0 {
			config.Accounts = accounts
		}
	}
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
