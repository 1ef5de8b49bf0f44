package config

import "github.com/hyperjump/kotae/internal/generation"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/db/entries.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kotae/data/indices/bleve"
	}
	if cfg.Source.TimeoutSec == 0 {
		cfg.Source.TimeoutSec = 30
	}
	cfg.Matching.ApplyDefaults()
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = generation.DefaultBaseURL
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = generation.DefaultModel
	}
	if cfg.Generation.TimeoutSec == 0 {
		cfg.Generation.TimeoutSec = int(generation.DefaultTimeout.Seconds())
	}
	if cfg.Generation.AppName == "" {
		cfg.Generation.AppName = "kotae"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "kotae"
	}
}
