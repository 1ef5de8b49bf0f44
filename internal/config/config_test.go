package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/source"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvOpenRouterAPIKey, "")
	t.Setenv(EnvSourceURL, "")
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
source:
  path: "/srv/faq.xlsx"
  sheet: "FAQ"
matching:
  match_threshold: 0.5
  context_size: 5
generation:
  api_key: "sk-file"
  model: "anthropic/claude-3-haiku"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Source.Path != "/srv/faq.xlsx" || cfg.Source.Sheet != "FAQ" {
		t.Errorf("unexpected source config: %+v", cfg.Source)
	}
	if cfg.Matching.MatchThreshold != 0.5 || cfg.Matching.ContextSize != 5 {
		t.Errorf("unexpected matching config: %+v", cfg.Matching)
	}
	if cfg.Matching.MaxEntries != ranking.DefaultMaxEntries {
		t.Errorf("max_entries = %d, want default", cfg.Matching.MaxEntries)
	}
	if cfg.Generation.APIKey != "sk-file" || cfg.Generation.Model != "anthropic/claude-3-haiku" {
		t.Errorf("unexpected generation config: %+v", cfg.Generation)
	}
	if cfg.Generation.BaseURL != generation.DefaultBaseURL {
		t.Errorf("base_url = %s, want default", cfg.Generation.BaseURL)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
debug: true
storage:
  database_path: "test.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  database_path: "./data/db/entries.db"
source:
  path: "./faq.xlsx"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "entries.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantSource := filepath.Join(dir, "faq.xlsx")
	if cfg.Source.Path != wantSource {
		t.Errorf("source path = %s, want %s", cfg.Source.Path, wantSource)
	}
}

func TestLoad_invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"threshold above one", "matching:\n  match_threshold: 1.5\n"},
		{"negative context size", "matching:\n  context_size: -1\n"},
		{"negative scoring retries", "matching:\n  max_scoring_retries: -2\n"},
		{"unknown source type", "source:\n  type: pdf\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_zeroThresholdKept(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "matching:\n  match_threshold: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Matching.MatchThreshold != 0 {
		t.Errorf("MatchThreshold = %v, want 0", cfg.Matching.MatchThreshold)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Run("kotae key wins", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "sk-kotae")
		t.Setenv(EnvOpenRouterAPIKey, "sk-openrouter")
		cfg := &Config{Generation: generation.Config{APIKey: "sk-file"}}
		ApplyEnv(cfg)
		if cfg.Generation.APIKey != "sk-kotae" {
			t.Errorf("api key = %s", cfg.Generation.APIKey)
		}
	})
	t.Run("openrouter key fills a blank", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvOpenRouterAPIKey, "sk-openrouter")
		cfg := &Config{}
		ApplyEnv(cfg)
		if cfg.Generation.APIKey != "sk-openrouter" {
			t.Errorf("api key = %s", cfg.Generation.APIKey)
		}
		cfg = &Config{Generation: generation.Config{APIKey: "sk-file"}}
		ApplyEnv(cfg)
		if cfg.Generation.APIKey != "sk-file" {
			t.Errorf("file key should win over OPENROUTER_API_KEY, got %s", cfg.Generation.APIKey)
		}
	})
	t.Run("source url", func(t *testing.T) {
		t.Setenv(EnvSourceURL, "https://docs.google.com/spreadsheets/d/x/export?format=csv")
		cfg := &Config{Source: SourceConfig{Type: source.TypeXLSX, Path: "/srv/faq.xlsx"}}
		ApplyEnv(cfg)
		if cfg.Source.Path != "" || cfg.Source.Type != source.TypeCSV || !cfg.Source.Remote() {
			t.Errorf("unexpected source: %+v", cfg.Source)
		}
	})
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Matching.MatchThreshold != ranking.DefaultMatchThreshold {
		t.Errorf("default threshold: got %v", cfg.Matching.MatchThreshold)
	}
	if cfg.Matching.ContextSize != ranking.DefaultContextSize {
		t.Errorf("default context size: got %d", cfg.Matching.ContextSize)
	}
	if cfg.Generation.TimeoutSec != 60 {
		t.Errorf("default generation timeout: got %d", cfg.Generation.TimeoutSec)
	}
	if cfg.Metrics.Namespace != "kotae" || !cfg.Metrics.EnabledOrDefault() {
		t.Errorf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
}

func TestSourceConfig(t *testing.T) {
	t.Run("watch defaults to true", func(t *testing.T) {
		s := &SourceConfig{}
		if !s.WatchOrDefault() {
			t.Error("WatchOrDefault() = false, want true")
		}
		f := false
		s.Watch = &f
		if s.WatchOrDefault() {
			t.Error("WatchOrDefault() = true, want false")
		}
	})
	t.Run("options", func(t *testing.T) {
		s := &SourceConfig{Path: "/srv/faq.xlsx", Sheet: "FAQ", QuestionColumn: "Q", TimeoutSec: 5, RefreshIntervalSec: 60}
		opts := s.Options()
		if opts.Path != "/srv/faq.xlsx" || opts.Sheet != "FAQ" || opts.QuestionColumn != "Q" || opts.Timeout != 5*time.Second {
			t.Errorf("unexpected options: %+v", opts)
		}
		if s.RefreshInterval() != time.Minute {
			t.Errorf("refresh interval = %v", s.RefreshInterval())
		}
		if !s.Configured() || s.Remote() {
			t.Errorf("Configured/Remote wrong for %+v", s)
		}
	})
}

func TestSave(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
		Source:  SourceConfig{Path: "/srv/faq.xlsx"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Source.Path != "/srv/faq.xlsx" {
		t.Errorf("loaded source path: got %s", loaded.Source.Path)
	}
}
