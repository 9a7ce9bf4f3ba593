// Package config provides configuration management for the UCR MCP server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration for the MCP server.
type Config struct {
	// Backend endpoints
	PredictServiceURL string `json:"predict_service_url"`
	HistoryServiceURL string `json:"history_service_url"`
	HistoryAPIKey     string `json:"history_api_key,omitempty"` // From env only, never stored in files

	// HTTP client configuration. Backend calls are single-attempt and
	// fail-fast; retry policy, if any, belongs to the calling agent.
	Timeout         time.Duration `json:"timeout"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	IdleConnTimeout time.Duration `json:"idle_conn_timeout"`

	// Rate limiting for outbound calls (the FBI API is rate limited)
	RateLimit       int  `json:"rate_limit"` // requests per second
	RateLimitBurst  int  `json:"rate_limit_burst"`
	EnableRateLimit bool `json:"enable_rate_limit"`

	// Observability
	EnableTracing   bool   `json:"enable_tracing"`
	MetricsEndpoint bool   `json:"metrics_endpoint"`
	HealthPort      int    `json:"health_port"` // 0 disables the health server
	HealthBindAddr  string `json:"health_bind_addr"`

	// Shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // json or console
}

// DefaultHistoryServiceURL is the public FBI Crime Data Explorer endpoint.
const DefaultHistoryServiceURL = "https://api.usa.gov/crime/fbi/cde"

// Load builds configuration from defaults, an optional JSON config file, and
// environment variables (highest precedence).
func Load() (*Config, error) {
	cfg := &Config{
		HistoryServiceURL: DefaultHistoryServiceURL,
		Timeout:           30 * time.Second,
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
		RateLimit:         10,
		RateLimitBurst:    5,
		EnableRateLimit:   true,
		EnableTracing:     false,
		MetricsEndpoint:   false,
		HealthPort:        0,
		HealthBindAddr:    "127.0.0.1",
		ShutdownTimeout:   10 * time.Second,
		LogLevel:          "info",
		LogFormat:         "json",
	}

	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid file path: path traversal detected")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return json.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("UCR_PREDICT_URL"); v != "" {
		cfg.PredictServiceURL = v
	}
	if v := os.Getenv("FBI_API_BASE_URL"); v != "" {
		cfg.HistoryServiceURL = v
	}
	if v := os.Getenv("FBI_API_KEY"); v != "" {
		cfg.HistoryAPIKey = v
	}
	if v := os.Getenv("UCR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("UCR_RATE_LIMIT"); v != "" {
		var limit int
		if _, err := fmt.Sscanf(v, "%d", &limit); err == nil {
			cfg.RateLimit = limit
		}
	}
	if v := os.Getenv("UCR_RATE_LIMIT_BURST"); v != "" {
		var burst int
		if _, err := fmt.Sscanf(v, "%d", &burst); err == nil {
			cfg.RateLimitBurst = burst
		}
	}
	if v := os.Getenv("UCR_ENABLE_RATE_LIMIT"); v != "" {
		cfg.EnableRateLimit = v == "true" || v == "1"
	}
	if v := os.Getenv("UCR_ENABLE_TRACING"); v != "" {
		cfg.EnableTracing = v == "true" || v == "1"
	}
	if v := os.Getenv("UCR_METRICS_ENDPOINT"); v != "" {
		cfg.MetricsEndpoint = v == "true" || v == "1"
	}
	if v := os.Getenv("UCR_HEALTH_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.HealthPort = port
		}
	}
	if v := os.Getenv("UCR_HEALTH_BIND_ADDR"); v != "" {
		cfg.HealthBindAddr = v
	}
	if v := os.Getenv("UCR_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// Validate checks if the configuration is valid. A missing FBI API key is a
// startup failure here, not a per-call error.
func (c *Config) Validate() error {
	if c.PredictServiceURL == "" {
		return errors.New("UCR_PREDICT_URL is required")
	}
	if c.HistoryServiceURL == "" {
		return errors.New("FBI_API_BASE_URL must not be empty")
	}
	if c.HistoryAPIKey == "" {
		return errors.New("FBI_API_KEY is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.RateLimit <= 0 && c.EnableRateLimit {
		return errors.New("rate_limit must be positive when rate limiting is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// Redact returns a copy of the config with sensitive data removed.
func (c *Config) Redact() *Config {
	redacted := *c
	redacted.HistoryAPIKey = MaskAPIKey(redacted.HistoryAPIKey)
	return &redacted
}

// MaskAPIKey returns a masked version of an API key for safe logging.
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}
