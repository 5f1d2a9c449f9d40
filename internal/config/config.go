package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the client core.
type Config struct {
	// OwnerID is the session identity everything is scoped to.
	OwnerID string `yaml:"owner_id"`

	// SyncURL is the websocket endpoint of the sync collaborator.
	SyncURL string `yaml:"sync_url"`

	// DatabasePath is the SQLite file holding the local
	// materialization. ":memory:" for an ephemeral store.
	DatabasePath string `yaml:"database_path"`

	// Timezone names the location calendar days are computed in.
	// Empty means the system local zone.
	Timezone string `yaml:"timezone"`
}

// Load reads configuration from an optional YAML file, then applies
// environment variable overrides. path may be empty or point at a
// missing file; env vars alone are enough.
func Load(path string) (*Config, error) {
	cfg := &Config{
		SyncURL:      "wss://sync.shorter.app/channel",
		DatabasePath: "shorter.db",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if v := os.Getenv("SHORTER_OWNER_ID"); v != "" {
		cfg.OwnerID = v
	}
	if v := os.Getenv("SHORTER_SYNC_URL"); v != "" {
		cfg.SyncURL = v
	}
	if v := os.Getenv("SHORTER_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SHORTER_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}

	if cfg.OwnerID == "" {
		return nil, fmt.Errorf("SHORTER_OWNER_ID is required")
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
