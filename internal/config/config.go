// Package config loads the workspace config file and environment settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CurrentVersion is the config file format version written by SaveConfig.
const CurrentVersion = "1"

// dirName is the workspace directory holding config.json.
const dirName = ".roomsync"

// Config represents the flat workspace configuration.
type Config struct {
	Version  string `json:"version"`
	UserID   string `json:"user_id,omitempty"`  // Signed-in user for this workspace
	Location string `json:"location,omitempty"` // Screen the terminal navigator last showed
}

// ErrNotFound is returned by LoadConfig when the workspace has no config file.
var ErrNotFound = errors.New("no roomsync config in workspace")

// LoadConfig reads .roomsync/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
func LoadConfig(dir string) (*Config, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	configDir := filepath.Join(dir, dirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", dirName, err)
	}

	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the location of the config file for a workspace directory.
func Path(dir string) string {
	return filepath.Join(dir, dirName, "config.json")
}
