// Package config loads tumbler settings from defaults, a YAML file, a .env
// file and TUMBLER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/tumbler-go/pkg/tumbler"
)

// Config represents the complete application configuration.
type Config struct {
	DefaultSource  string        `yaml:"default_source"`
	HeaderMode     string        `yaml:"header_mode"`
	EmptyColumns   string        `yaml:"empty_columns"`
	RevealInterval time.Duration `yaml:"reveal_interval"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	Server         ServerConfig  `yaml:"server"`
	History        HistoryConfig `yaml:"history"`
	Logging        LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP host settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	EmbedBase string `yaml:"embed_base"`
}

// HistoryConfig holds snapshot persistence settings. An empty Path keeps
// history in memory.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultSource:  tumbler.DefaultSourceURL,
		HeaderMode:     string(tumbler.HeaderAuto),
		EmptyColumns:   string(tumbler.EmptyColumnsAllow),
		RevealInterval: 100 * time.Millisecond,
		FetchTimeout:   tumbler.DefaultFetchTimeout,
		Server: ServerConfig{
			Addr:      ":8080",
			EmbedBase: "http://localhost:8080/",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DefaultSource = getEnvOrDefault("TUMBLER_DEFAULT_SOURCE", c.DefaultSource)
	c.HeaderMode = getEnvOrDefault("TUMBLER_HEADER_MODE", c.HeaderMode)
	c.EmptyColumns = getEnvOrDefault("TUMBLER_EMPTY_COLUMNS", c.EmptyColumns)
	c.Server.Addr = getEnvOrDefault("TUMBLER_ADDR", c.Server.Addr)
	c.Server.EmbedBase = getEnvOrDefault("TUMBLER_EMBED_BASE", c.Server.EmbedBase)
	c.History.Path = getEnvOrDefault("TUMBLER_HISTORY_PATH", c.History.Path)
	c.Logging.Level = getEnvOrDefault("TUMBLER_LOG_LEVEL", c.Logging.Level)

	var err error
	if c.RevealInterval, err = getEnvDurationOrDefault("TUMBLER_REVEAL_INTERVAL", c.RevealInterval); err != nil {
		return err
	}
	if c.FetchTimeout, err = getEnvDurationOrDefault("TUMBLER_FETCH_TIMEOUT", c.FetchTimeout); err != nil {
		return err
	}
	if c.Logging.Development, err = getEnvBoolOrDefault("TUMBLER_LOG_DEVELOPMENT", c.Logging.Development); err != nil {
		return err
	}
	return nil
}

// Validate rejects unknown policies and negative durations.
func (c *Config) Validate() error {
	switch tumbler.HeaderMode(c.HeaderMode) {
	case tumbler.HeaderAuto, tumbler.HeaderAlways:
	default:
		return fmt.Errorf("invalid header_mode: %s (must be auto or always)", c.HeaderMode)
	}
	switch tumbler.EmptyColumns(c.EmptyColumns) {
	case tumbler.EmptyColumnsAllow, tumbler.EmptyColumnsReject:
	default:
		return fmt.Errorf("invalid empty_columns: %s (must be allow or reject)", c.EmptyColumns)
	}
	if c.RevealInterval < 0 {
		return fmt.Errorf("reveal_interval must not be negative")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	return nil
}

// TumblerOptions maps the configuration onto session options.
func (c *Config) TumblerOptions() tumbler.Options {
	interval := c.RevealInterval
	return tumbler.Options{
		HeaderMode:     tumbler.HeaderMode(c.HeaderMode),
		EmptyColumns:   tumbler.EmptyColumns(c.EmptyColumns),
		DefaultSource:  c.DefaultSource,
		RevealInterval: &interval,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
