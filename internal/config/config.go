// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package config loads the bitrec command's YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bpowers/bitrec/internal/snapshot"
	"github.com/bpowers/bitrec/search"
)

// Config holds defaults for the bitrec command.  Flags override it.
type Config struct {
	Store         string  `yaml:"store"`
	Dataset       string  `yaml:"dataset"`
	Capacity      int64   `yaml:"capacity"`
	SearchMode    string  `yaml:"search_mode"`
	SnapshotCodec string  `yaml:"snapshot_codec"`
	Logging       Logging `yaml:"logging"`
}

// Logging contains logging configuration.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig is the stock benchmark layout: a 1 GiB
// region holding up to 2^27 records.
func DefaultConfig() *Config {
	return &Config{
		Store:         "memory_mapped.dat",
		Dataset:       "dataset.txt",
		Capacity:      (1 << 30) / 8,
		SearchMode:    search.Linear.String(),
		SnapshotCodec: snapshot.Zstd.String(),
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field parses.
func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be >= 0, got %d", c.Capacity)
	}
	if _, err := search.ParseMode(c.SearchMode); err != nil {
		return err
	}
	if _, err := snapshot.ParseCodec(c.SnapshotCodec); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Mode returns the configured search mode.
func (c *Config) Mode() search.Mode {
	m, _ := search.ParseMode(c.SearchMode)
	return m
}

// ParseLevel maps debug/info/warn/error to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
