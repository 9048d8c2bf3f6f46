package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# AlphaQuant Console Configuration

[server]
# Base URL of the AlphaQuant backend
url = "http://localhost:8000"
# Per-request timeout
timeout = "10s"

[trading]
# Trading mode: "sim", "paper" or "live"
mode = "sim"
# Symbol the console opens on
default_symbol = "SPY"
# Order time-in-force: "day" or "gtc"
time_in_force = "day"

[poll]
# Refresh cadence per view, in seconds
dashboard_seconds = 5
chart_seconds = 15
orders_seconds = 5
algo_seconds = 3

[ui]
# Enable colored output
color_enabled = true
# Chart history window, e.g. "1mo", "6mo", "1y"
chart_period = "6mo"
# Chart bar interval, e.g. "1d", "1h", "15m"
chart_interval = "1d"
`

const credentialsTemplate = `# AlphaQuant Console Credentials
# Broker API keys forwarded to the backend via 'alphaquant settings keys'.
# Keep this file private (chmod 600).

api_key_id = ""
api_secret = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	// Credentials are secrets, restrict permissions
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}
