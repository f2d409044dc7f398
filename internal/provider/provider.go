package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Provider is the single capability every generation backend exposes:
// accept a structured conversation, return generated text. New backends
// plug into the router without touching routing logic.
type Provider interface {
	// Name returns the provider's stable identifier.
	Name() string

	// Generate produces text for the conversation using the given model.
	Generate(ctx context.Context, model string, conv Conversation, opts Options) (string, error)
}

// ErrProviderUnavailable marks a generation request for which every
// configured backend (primary and fallback) failed.
var ErrProviderUnavailable = errors.New("all providers unavailable")

// Config defines the construction parameters for a provider.
type Config struct {
	Type      string // Adapter type; currently "openai" (OpenAI-compatible chat API)
	BaseURL   string // API base URL, e.g. https://api.cerebras.ai/v1
	APIKeyEnv string // Environment variable holding the API key
	Timeout   time.Duration
}

// New creates a provider from the given configuration.
// This factory switches on cfg.Type and returns the matching adapter.
func New(name string, cfg Config) (Provider, error) {
	switch cfg.Type {
	case "openai":
		key := ""
		if cfg.APIKeyEnv != "" {
			key = os.Getenv(cfg.APIKeyEnv)
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		return NewOpenAI(name, cfg.BaseURL, key, &http.Client{Timeout: timeout}), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
