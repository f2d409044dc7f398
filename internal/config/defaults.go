package config

// DefaultConfig returns the default configuration: a fast primary provider
// for the bulk of the pipeline with a fallback route on a second vendor.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderConfig{
			"cerebras": {
				Type:      "openai",
				BaseURL:   "https://api.cerebras.ai/v1",
				APIKeyEnv: "CEREBRAS_API_KEY",
			},
			"openai": {
				Type:      "openai",
				BaseURL:   "https://api.openai.com/v1",
				APIKeyEnv: "OPENAI_API_KEY",
			},
		},
		Routes: map[string]RouteConfig{
			"extraction":        {Provider: "cerebras", Model: "llama-3.3-70b"},
			"simplification":    {Provider: "cerebras", Model: "llama-3.3-70b"},
			"related-research":  {Provider: "cerebras", Model: "llama-3.3-70b"},
			"literature-review": {Provider: "cerebras", Model: "llama-3.3-70b"},
			"gap-analysis":      {Provider: "cerebras", Model: "llama-3.3-70b"},
			"code-generation":   {Provider: "cerebras", Model: "qwen-3-coder-480b"},
		},
		Default:  RouteConfig{Provider: "cerebras", Model: "llama-3.3-70b"},
		Fallback: RouteConfig{Provider: "openai", Model: "gpt-4o-mini"},
		Retry: RetryConfig{
			MaxRetries:       3,
			InitialBackoffMS: 500,
		},
		Pipeline: PipelineConfig{
			MaxConcurrent: 4,
		},
		Scholar: ScholarConfig{
			RequestsPerSecond: 1,
		},
		Cache: CacheConfig{
			TTLMinutes: 60,
		},
		Store: StoreConfig{
			Path: ".researchpilot/runs.db",
		},
	}
}
