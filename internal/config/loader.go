package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config, defaults.
// Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.researchpilot/config.json
// Project: .researchpilot/config.json (relative to cwd)
func LoadDefault() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".researchpilot", "config.json")
	projectPath := filepath.Join(".researchpilot", "config.json")

	return Load(globalPath, projectPath)
}

// Save persists the configuration to a JSON file.
// Creates parent directories if they don't exist.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// mergeConfigFile reads a JSON config file and merges it into the base config.
// Missing files are silently skipped. Malformed JSON returns an error.
// Map sections merge per key; scalar sections overwrite when set.
func mergeConfigFile(base *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Missing file is not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for key, provider := range loaded.Providers {
		base.Providers[key] = provider
	}
	for key, route := range loaded.Routes {
		base.Routes[key] = route
	}

	if loaded.Default != (RouteConfig{}) {
		base.Default = loaded.Default
	}
	if loaded.Fallback != (RouteConfig{}) {
		base.Fallback = loaded.Fallback
	}
	if loaded.Retry != (RetryConfig{}) {
		base.Retry = loaded.Retry
	}
	if loaded.Pipeline.MaxConcurrent != 0 {
		base.Pipeline = loaded.Pipeline
	}
	if loaded.Scholar != (ScholarConfig{}) {
		base.Scholar = loaded.Scholar
	}
	if loaded.Cache.TTLMinutes != 0 {
		base.Cache = loaded.Cache
	}
	if loaded.Store.Path != "" {
		base.Store = loaded.Store
	}

	return nil
}
