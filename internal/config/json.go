package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/planner/internal/flagx"
	"github.com/dmitrijs2005/planner/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseDSN         string         `json:"database_dsn"`
	ProviderBaseURL     string         `json:"provider_base_url"`
	ProviderTimeout     timex.Duration `json:"provider_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncDebounce        timex.Duration `json:"sync_debounce"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields present in the file override the current values.
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.ProviderBaseURL != "" {
		cfg.ProviderBaseURL = jc.ProviderBaseURL
	}
	if jc.ProviderTimeout.Duration != 0 {
		cfg.ProviderTimeout = jc.ProviderTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.SyncDebounce.Duration != 0 {
		cfg.SyncDebounce = jc.SyncDebounce.Duration
	}
}
