package config

import "time"

// Config holds runtime settings for the planner core.
//
// Fields:
//   - DatabaseDSN: path or DSN of the local SQLite database.
//   - ProviderBaseURL: base URL of the cloud identity/sync provider.
//   - ProviderTimeout: bound on every remote provider call.
//   - OnlineCheckInterval: how often reachability is probed.
//   - SyncDebounce: delay before a background sync pass fires.
type Config struct {
	DatabaseDSN         string
	ProviderBaseURL     string
	ProviderTimeout     time.Duration
	OnlineCheckInterval time.Duration
	SyncDebounce        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "planner.db"
	c.ProviderBaseURL = "http://127.0.0.1:8080"
	c.ProviderTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncDebounce = 2 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
