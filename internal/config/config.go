package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the configuration file does not exist
var ErrConfigNotFound = errors.New("configuration file not found")

// DisabledPath turns off an optional output when used as its path
const DisabledPath = "-"

// DefaultUserAgent identifies the crawler to the sites it visits
const DefaultUserAgent = "Mozilla/5.0 (compatible; ContentWeaver/1.0; +https://github.com/alvmarrod/content-weaver)"

// Config holds all runtime configuration parameters
type Config struct {
	SeedURL          string `json:"seed_url" yaml:"seed_url"`
	MaxURLs          int    `json:"max_urls" yaml:"max_urls"`
	RequestTimeoutMs int    `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	UserAgent        string `json:"user_agent" yaml:"user_agent"`
	DBPath           string `json:"db_path" yaml:"db_path"`
	OutputPath       string `json:"output_path" yaml:"output_path"`
	MetricsPath      string `json:"metrics_path" yaml:"metrics_path"`
	LogLevel         string `json:"log_level" yaml:"log_level"`
}

// LoadConfig reads and validates configuration from a JSON or YAML file
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile decodes a config file without applying defaults or validation.
// The format is chosen by extension: .yaml/.yml as YAML, anything else as JSON.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Finalize applies defaults and validates cfg in place
func Finalize(cfg *Config) error {
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.MaxURLs == 0 {
		cfg.MaxURLs = 50
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 10000
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "crawler.db"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "content.json"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if cfg.SeedURL == "" {
		return fmt.Errorf("seed_url is required")
	}
	parsed, err := url.Parse(cfg.SeedURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("seed_url must be an absolute http(s) URL")
	}
	if cfg.MaxURLs < 1 {
		return fmt.Errorf("max_urls must be >= 1")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request_timeout_ms must be >= 1000")
	}
	return nil
}

// Enabled reports whether an optional output path is switched on
func Enabled(path string) bool {
	return path != "" && path != DisabledPath
}
