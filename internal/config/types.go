package config

// ProviderConfig defines one LLM backend endpoint. Providers are separate
// from routes -- multiple task categories can share one provider.
type ProviderConfig struct {
	Type           string `json:"type"`                      // Backend type matching provider.Config.Type: "openai"
	BaseURL        string `json:"base_url,omitempty"`        // API base URL (OpenAI-compatible)
	APIKeyEnv      string `json:"api_key_env,omitempty"`     // Environment variable holding the API key
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"` // Per-request timeout
}

// RouteConfig maps a task category to a provider and model.
type RouteConfig struct {
	Provider string `json:"provider"` // Key into Providers map
	Model    string `json:"model"`
}

// RetryConfig bounds the retry executor.
type RetryConfig struct {
	MaxRetries       int `json:"max_retries"`
	InitialBackoffMS int `json:"initial_backoff_ms,omitempty"`
}

// PipelineConfig tunes the orchestrator.
type PipelineConfig struct {
	MaxConcurrent int `json:"max_concurrent,omitempty"`
}

// ScholarConfig configures the Semantic Scholar client.
type ScholarConfig struct {
	BaseURL           string  `json:"base_url,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
}

// CacheConfig controls response caching.
type CacheConfig struct {
	TTLMinutes int `json:"ttl_minutes,omitempty"`
}

// StoreConfig locates the run database.
type StoreConfig struct {
	Path string `json:"path,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Providers map[string]ProviderConfig `json:"providers"`
	Routes    map[string]RouteConfig    `json:"routes"`
	Default   RouteConfig               `json:"default"`
	Fallback  RouteConfig               `json:"fallback"`
	Retry     RetryConfig               `json:"retry"`
	Pipeline  PipelineConfig            `json:"pipeline"`
	Scholar   ScholarConfig             `json:"scholar"`
	Cache     CacheConfig               `json:"cache"`
	Store     StoreConfig               `json:"store"`
}
