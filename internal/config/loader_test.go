package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name string, cfg *Config) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshaling config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name           string
		globalConfig   *Config
		projectConfig  *Config
		expectRoutes   int
		checkRoute     string
		expectProvider string
		expectModel    string
		expectRetries  int
	}{
		{
			name:          "No config files - returns defaults",
			expectRoutes:  6,
			expectRetries: 3,
		},
		{
			name: "Global only - adds new route",
			globalConfig: &Config{
				Routes: map[string]RouteConfig{
					"summarization": {Provider: "openai", Model: "gpt-4o"},
				},
			},
			expectRoutes:   7, // 6 defaults + 1 new
			checkRoute:     "summarization",
			expectProvider: "openai",
			expectModel:    "gpt-4o",
			expectRetries:  3,
		},
		{
			name: "Project only - overrides route",
			projectConfig: &Config{
				Routes: map[string]RouteConfig{
					"code-generation": {Provider: "openai", Model: "gpt-4o"},
				},
			},
			expectRoutes:   6, // Same count, code-generation modified
			checkRoute:     "code-generation",
			expectProvider: "openai",
			expectModel:    "gpt-4o",
			expectRetries:  3,
		},
		{
			name: "Project overrides global - project wins",
			globalConfig: &Config{
				Routes: map[string]RouteConfig{
					"extraction": {Provider: "cerebras", Model: "model-x"},
				},
				Retry: RetryConfig{MaxRetries: 5},
			},
			projectConfig: &Config{
				Routes: map[string]RouteConfig{
					"extraction": {Provider: "openai", Model: "model-y"},
				},
			},
			expectRoutes:   6,
			checkRoute:     "extraction",
			expectProvider: "openai",
			expectModel:    "model-y",
			expectRetries:  5, // Global scalar survives; project left it unset
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			globalPath := ""
			if tt.globalConfig != nil {
				globalPath = writeConfig(t, tmpDir, "global.json", tt.globalConfig)
			}
			projectPath := ""
			if tt.projectConfig != nil {
				projectPath = writeConfig(t, tmpDir, "project.json", tt.projectConfig)
			}

			cfg, err := Load(globalPath, projectPath)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := len(cfg.Routes); got != tt.expectRoutes {
				t.Errorf("routes count = %d, want %d", got, tt.expectRoutes)
			}
			if cfg.Retry.MaxRetries != tt.expectRetries {
				t.Errorf("max retries = %d, want %d", cfg.Retry.MaxRetries, tt.expectRetries)
			}

			if tt.checkRoute != "" {
				route, exists := cfg.Routes[tt.checkRoute]
				if !exists {
					t.Fatalf("expected route %q not found", tt.checkRoute)
				}
				if route.Provider != tt.expectProvider {
					t.Errorf("route %q provider = %q, want %q", tt.checkRoute, route.Provider, tt.expectProvider)
				}
				if route.Model != tt.expectModel {
					t.Errorf("route %q model = %q, want %q", tt.checkRoute, route.Model, tt.expectModel)
				}
			}
		})
	}
}

func TestLoad_ScalarOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	projectPath := writeConfig(t, tmpDir, "project.json", &Config{
		Fallback: RouteConfig{Provider: "openai", Model: "gpt-4.1-mini"},
		Pipeline: PipelineConfig{MaxConcurrent: 2},
		Store:    StoreConfig{Path: "/tmp/custom.db"},
	})

	cfg, err := Load("", projectPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Fallback.Model != "gpt-4.1-mini" {
		t.Errorf("fallback model = %q", cfg.Fallback.Model)
	}
	if cfg.Pipeline.MaxConcurrent != 2 {
		t.Errorf("max concurrent = %d", cfg.Pipeline.MaxConcurrent)
	}
	if cfg.Store.Path != "/tmp/custom.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	// Untouched sections keep defaults
	if cfg.Cache.TTLMinutes != 60 {
		t.Errorf("cache ttl = %d, want default 60", cfg.Cache.TTLMinutes)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()

	globalPath := filepath.Join(tmpDir, "global.json")
	if err := os.WriteFile(globalPath, []byte("{invalid json"), 0644); err != nil {
		t.Fatalf("writing malformed config: %v", err)
	}

	_, err := Load(globalPath, "")
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLoad_MissingFilesNotError(t *testing.T) {
	cfg, err := Load("/nonexistent/global.json", "/nonexistent/project.json")
	if err != nil {
		t.Fatalf("expected no error for missing files, got: %v", err)
	}

	if len(cfg.Providers) != 2 {
		t.Errorf("providers count = %d, want 2", len(cfg.Providers))
	}
	if cfg.Default.Provider != "cerebras" {
		t.Errorf("default provider = %q", cfg.Default.Provider)
	}
}

func TestSaveCreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"test": {Type: "openai", BaseURL: "http://localhost:9999", APIKeyEnv: "TEST_KEY"},
		},
		Routes: map[string]RouteConfig{
			"extraction": {Provider: "test", Model: "test-model"},
		},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Config file contains invalid JSON: %v", err)
	}

	if loaded.Providers["test"].BaseURL != "http://localhost:9999" {
		t.Errorf("provider base url = %q", loaded.Providers["test"].BaseURL)
	}
	if loaded.Routes["extraction"].Model != "test-model" {
		t.Errorf("route model = %q", loaded.Routes["extraction"].Model)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "deep", "config.json")

	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Config file was not created: %s", path)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	cfg.Retry.MaxRetries = 7
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Retry.MaxRetries != 7 {
		t.Errorf("max retries = %d, want 7", loaded.Retry.MaxRetries)
	}
}
