// Package config provides configuration management for the trading console.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"alphaquant-console/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig  `mapstructure:"server"`
	Trading     TradingConfig `mapstructure:"trading"`
	Poll        PollConfig    `mapstructure:"poll"`
	UI          UIConfig      `mapstructure:"ui"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// ServerConfig holds backend connection configuration.
type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	Mode          string `mapstructure:"mode"`           // sim, paper, live
	DefaultSymbol string `mapstructure:"default_symbol"` // symbol the console opens on
	TimeInForce   string `mapstructure:"time_in_force"`  // day, gtc
}

// PollConfig holds refresh cadence configuration, in seconds.
type PollConfig struct {
	DashboardSeconds int `mapstructure:"dashboard_seconds"`
	ChartSeconds     int `mapstructure:"chart_seconds"`
	OrdersSeconds    int `mapstructure:"orders_seconds"`
	AlgoSeconds      int `mapstructure:"algo_seconds"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	ChartPeriod  string `mapstructure:"chart_period"`   // e.g. 6mo
	ChartBars    string `mapstructure:"chart_interval"` // e.g. 1d
}

// Credentials holds the broker API credentials forwarded to the backend.
type Credentials struct {
	APIKeyID  string `mapstructure:"api_key_id"`
	APISecret string `mapstructure:"api_secret"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/alphaquant"
	}
	return filepath.Join(home, ".config", "alphaquant")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("server.url", "http://localhost:8000")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("trading.mode", "sim")
	v.SetDefault("trading.default_symbol", "SPY")
	v.SetDefault("trading.time_in_force", "day")
	v.SetDefault("poll.dashboard_seconds", 5)
	v.SetDefault("poll.chart_seconds", 15)
	v.SetDefault("poll.orders_seconds", 5)
	v.SetDefault("poll.algo_seconds", 3)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.chart_period", "6mo")
	v.SetDefault("ui.chart_interval", "1d")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			return v.Unmarshal(cfg)
		}
		return err
	}

	return v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ALPHAQUANT_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("ALPHAQUANT_API_KEY_ID"); v != "" {
		cfg.Credentials.APIKeyID = v
	}
	if v := os.Getenv("ALPHAQUANT_API_SECRET"); v != "" {
		cfg.Credentials.APISecret = v
	}
	if v := os.Getenv("ALPHAQUANT_MODE"); v != "" {
		cfg.Trading.Mode = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must not be empty")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}

	if !models.Mode(c.Trading.Mode).Valid() {
		return fmt.Errorf("invalid trading mode: %s (must be 'sim', 'paper' or 'live')", c.Trading.Mode)
	}

	for name, seconds := range map[string]int{
		"poll.dashboard_seconds": c.Poll.DashboardSeconds,
		"poll.chart_seconds":     c.Poll.ChartSeconds,
		"poll.orders_seconds":    c.Poll.OrdersSeconds,
		"poll.algo_seconds":      c.Poll.AlgoSeconds,
	} {
		if seconds <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}

// Mode returns the configured trading mode.
func (c *Config) Mode() models.Mode {
	return models.Mode(c.Trading.Mode)
}

// IsLiveMode returns true if orders route to a live account.
func (c *Config) IsLiveMode() bool {
	return c.Trading.Mode == string(models.ModeLive)
}
