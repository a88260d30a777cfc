// Package common provides shared utilities for vire-valuation
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for vire-valuation
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Valuation   ValuationConfig `toml:"valuation"`
	Reports     ReportsConfig   `toml:"reports"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	RateLimit       int    `toml:"rate_limit"`
	Timeout         string `toml:"timeout"`
	DefaultExchange string `toml:"default_exchange"` // appended to tickers without an exchange suffix
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ValuationConfig holds default DCF assumptions. Rates accept fractions or
// whole-number percentages (10 meaning 10%).
type ValuationConfig struct {
	WACC           float64 `toml:"wacc"`
	Growth         float64 `toml:"growth"`
	TerminalGrowth float64 `toml:"terminal_growth"`
	Years          int     `toml:"years"`
	Sensitivity    bool    `toml:"sensitivity"`
}

// Rates returns the default rates as fractions. Values above 1.5 are
// read as percentages.
func (v ValuationConfig) Rates() (wacc, growth, terminalGrowth float64) {
	frac := func(r float64) float64 {
		if r > 1.5 {
			return r / 100
		}
		return r
	}
	return frac(v.WACC), frac(v.Growth), frac(v.TerminalGrowth)
}

// ReportsConfig controls spreadsheet report output
type ReportsConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:         "https://eodhd.com/api",
				RateLimit:       10,
				Timeout:         "30s",
				DefaultExchange: "US",
			},
		},
		Valuation: ValuationConfig{
			WACC:           0.10,
			Growth:         0.06,
			TerminalGrowth: 0.03,
			Years:          5,
			Sensitivity:    true,
		},
		Reports: ReportsConfig{
			Path:    "reports",
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/vire-valuation.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
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

	if err := validateValuationDefaults(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIRE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("VIRE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("VIRE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("VIRE_REPORTS_PATH"); path != "" {
		config.Reports.Path = path
	}

	if key, err := ResolveAPIKey("eodhd_api_key", ""); err == nil {
		config.Clients.EODHD.APIKey = key
	}
}

// validateValuationDefaults rejects default assumptions no valuation could run with.
func validateValuationDefaults(config *Config) error {
	v := &config.Valuation
	if v.Years < 1 {
		return fmt.Errorf("valuation.years must be at least 1, got %d", v.Years)
	}
	wacc, _, tg := v.Rates()
	if wacc <= tg {
		return fmt.Errorf("valuation.wacc (%g) must be greater than valuation.terminal_growth (%g)", v.WACC, v.TerminalGrowth)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment or fallback
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key": {"EODHD_API_KEY", "VIRE_EODHD_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment", name)
}
