package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Tools    ToolsConfig    `toml:"tools"`
	Memory   MemoryConfig   `toml:"memory"`
	Retry    RetryConfig    `toml:"retry"`
	Logs     LogsConfig     `toml:"logs"`
	Database DatabaseConfig `toml:"database"`
	Observer ObserverConfig `toml:"observer"`
}

type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

type ToolsConfig struct {
	UseRealAPIs       bool   `toml:"use_real_apis"`
	TicketmasterKey   string `toml:"ticketmaster_key"`
	GeocodingURL      string `toml:"geocoding_url"`
	ForecastURL       string `toml:"forecast_url"`
	TicketmasterURL   string `toml:"ticketmaster_url"`
	RequestTimeoutSec int    `toml:"request_timeout_sec"`
}

type MemoryConfig struct {
	SummarizeEvery int `toml:"summarize_every"`
	KeepRecent     int `toml:"keep_recent"`
	KeepScratchpad int `toml:"keep_scratchpad"`
}

type RetryConfig struct {
	MaxAttempts   int     `toml:"max_attempts"`
	BackoffSec    float64 `toml:"backoff_sec"`
	RetryStatuses []int   `toml:"retry_statuses"`
}

type LogsConfig struct {
	Dir string `toml:"dir"`
}

type DatabaseConfig struct {
	Driver      string `toml:"driver"`
	Path        string `toml:"path"`
	PostgresURL string `toml:"postgres_url"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		LLM: LLMConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		Tools: ToolsConfig{
			GeocodingURL:      "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL:       "https://api.open-meteo.com/v1/forecast",
			TicketmasterURL:   "https://app.ticketmaster.com/discovery/v2/events.json",
			RequestTimeoutSec: 10,
		},
		Memory: MemoryConfig{SummarizeEvery: 12, KeepRecent: 20, KeepScratchpad: 12},
		Retry:  RetryConfig{MaxAttempts: 3},
		Logs:   LogsConfig{Dir: "logs"},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "organizer.db",
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "organizer.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("ORGANIZER_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ORGANIZER_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ORGANIZER_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TICKETMASTER_API_KEY"); v != "" {
		cfg.Tools.TicketmasterKey = v
	}
	if v := os.Getenv("ORGANIZER_USE_REAL_APIS"); v == "true" || v == "1" {
		cfg.Tools.UseRealAPIs = true
	}
	if v := os.Getenv("ORGANIZER_LOGS_DIR"); v != "" {
		cfg.Logs.Dir = v
	}
	if v := os.Getenv("ORGANIZER_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("ORGANIZER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ORGANIZER_POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}
	if v := os.Getenv("ORGANIZER_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("ORGANIZER_OBSERVER_ENABLED"); v == "true" || v == "1" {
		cfg.Observer.Enabled = true
	}

	return cfg
}
