// Package config provides configuration loading and structs for the Kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/source"
)

// Environment variables that override the file.
const (
	EnvAPIKey           = "KOTAE_GENERATION_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvSourceURL        = "KOTAE_SOURCE_URL"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool              `yaml:"debug"`
	Server     ServerConfig      `yaml:"server"`
	Storage    StorageConfig     `yaml:"storage"`
	Source     SourceConfig      `yaml:"source"`
	Matching   ranking.Config    `yaml:"matching"`
	Generation generation.Config `yaml:"generation"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the keyword index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// SourceConfig describes the spreadsheet the entries come from.
type SourceConfig struct {
	Type           string `yaml:"type"`
	Path           string `yaml:"path"`
	URL            string `yaml:"url"`
	Sheet          string `yaml:"sheet"`
	QuestionColumn string `yaml:"question_column"`
	AnswerColumn   string `yaml:"answer_column"`
	// RefreshIntervalSec reloads the source periodically; 0 disables it.
	RefreshIntervalSec int   `yaml:"refresh_interval_sec"`
	TimeoutSec         int   `yaml:"timeout_sec"`
	Watch              *bool `yaml:"watch"`
}

// WatchOrDefault returns whether to reload a local source file when it changes;
// defaults to true when unset.
func (s *SourceConfig) WatchOrDefault() bool {
	if s.Watch != nil {
		return *s.Watch
	}
	return true
}

// RefreshInterval returns the periodic refresh interval.
func (s *SourceConfig) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalSec) * time.Second
}

// Configured reports whether a path or URL is set.
func (s *SourceConfig) Configured() bool {
	return s.Path != "" || s.URL != ""
}

// Remote reports whether the source is fetched over HTTP.
func (s *SourceConfig) Remote() bool {
	return s.URL != ""
}

// Options converts the section to source options.
func (s *SourceConfig) Options() source.Options {
	return source.Options{
		Type:           s.Type,
		Path:           s.Path,
		URL:            s.URL,
		Sheet:          s.Sheet,
		QuestionColumn: s.QuestionColumn,
		AnswerColumn:   s.AnswerColumn,
		Timeout:        time.Duration(s.TimeoutSec) * time.Second,
	}
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   *bool  `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// EnabledOrDefault returns whether /metrics is served; defaults to true when unset.
func (m *MetricsConfig) EnabledOrDefault() bool {
	if m.Enabled != nil {
		return *m.Enabled
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	if cfg.Source.Path != "" {
		cfg.Source.Path = expandPath(cfg.Source.Path, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides file values with environment variables.
func ApplyEnv(cfg *Config) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.Generation.APIKey = key
	} else if key := os.Getenv(EnvOpenRouterAPIKey); key != "" && cfg.Generation.APIKey == "" {
		cfg.Generation.APIKey = key
	}
	if url := os.Getenv(EnvSourceURL); url != "" {
		cfg.Source.URL = url
		cfg.Source.Path = ""
		if cfg.Source.Type == source.TypeXLSX {
			cfg.Source.Type = source.TypeCSV
		}
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Source.Type) {
	case "", source.TypeXLSX, source.TypeCSV:
	default:
		return fmt.Errorf("source.type must be %q or %q, got %q", source.TypeXLSX, source.TypeCSV, c.Source.Type)
	}
	if c.Source.RefreshIntervalSec < 0 {
		return fmt.Errorf("source.refresh_interval_sec must not be negative")
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	return nil
}

// Save writes the config to path. Used by import to remember the source file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
