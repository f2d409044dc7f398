package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/researchpilot/researchpilot/internal/cache"
)

// Route binds a task category to a provider/model pair.
type Route struct {
	Provider string
	Model    string
}

// RouterConfig configures the dispatch table.
type RouterConfig struct {
	// Routes maps task categories (e.g. "extraction") to their primary
	// provider/model pair. Unlisted categories use Default.
	Routes map[string]Route

	// Default serves categories absent from Routes.
	Default Route

	// Fallback is the single designated secondary pair tried when the
	// primary fails. The router performs at most one fallback hop.
	Fallback Route

	// CacheTTL bounds how long successful generations are memoized.
	// Zero disables caching even when a cache is attached.
	CacheTTL time.Duration
}

// Router dispatches generation requests to interchangeable backends by
// task category, with one-hop fallback and per-provider circuit breaking.
// Backend clients are shared, read-only configuration across concurrent
// callers.
type Router struct {
	providers map[string]Provider
	cfg       RouterConfig
	breakers  *BreakerRegistry
	memo      cache.Cache // optional
	logger    *log.Logger
}

// NewRouter creates a router over the given providers. memo may be nil to
// disable caching.
func NewRouter(providers map[string]Provider, cfg RouterConfig, memo cache.Cache, logger *log.Logger) *Router {
	return &Router{
		providers: providers,
		cfg:       cfg,
		breakers:  NewBreakerRegistry(logger),
		memo:      memo,
		logger:    logger,
	}
}

// route resolves the primary pair for a category.
func (r *Router) route(category string) Route {
	if rt, ok := r.cfg.Routes[category]; ok {
		return rt
	}
	return r.cfg.Default
}

// Generate invokes the category's primary backend; on any failure it
// transparently retries the same request against the designated fallback.
// If the fallback also fails the error wraps ErrProviderUnavailable and
// propagates to the caller, whose own retry layer decides what to do next.
func (r *Router) Generate(ctx context.Context, category string, conv Conversation, opts Options) (string, error) {
	key, keyed := r.fingerprint(category, conv)
	if keyed {
		if text, ok := r.memo.Get(key); ok {
			return text, nil
		}
	}

	primary := r.route(category)
	text, primaryErr := r.invoke(ctx, primary, conv, opts)
	if primaryErr == nil {
		r.memoize(key, keyed, text)
		return text, nil
	}

	// Cancellation is the caller's doing; a fallback hop would fail the
	// same way.
	if ctx.Err() != nil {
		return "", primaryErr
	}

	fallback := r.cfg.Fallback
	if fallback.Provider == "" || fallback == primary {
		return "", fmt.Errorf("%w: category %q: %v", ErrProviderUnavailable, category, primaryErr)
	}

	if r.logger != nil {
		r.logger.Warn("primary provider failed, trying fallback",
			"category", category, "primary", primary.Provider, "fallback", fallback.Provider, "err", primaryErr)
	}

	text, fallbackErr := r.invoke(ctx, fallback, conv, opts)
	if fallbackErr == nil {
		r.memoize(key, keyed, text)
		return text, nil
	}

	return "", fmt.Errorf("%w: category %q: primary %s: %v; fallback %s: %v",
		ErrProviderUnavailable, category, primary.Provider, primaryErr, fallback.Provider, fallbackErr)
}

// invoke runs one provider call through its circuit breaker.
func (r *Router) invoke(ctx context.Context, rt Route, conv Conversation, opts Options) (string, error) {
	p, ok := r.providers[rt.Provider]
	if !ok {
		return "", fmt.Errorf("no provider registered for %q", rt.Provider)
	}

	cb := r.breakers.Get(rt.Provider)
	result, err := cb.Execute(func() (interface{}, error) {
		return p.Generate(ctx, rt.Model, conv, opts)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// fingerprint derives the deterministic cache key for (category,
// conversation). Returns keyed=false when caching is disabled or the hash
// cannot be computed.
func (r *Router) fingerprint(category string, conv Conversation) (string, bool) {
	if r.memo == nil || r.cfg.CacheTTL <= 0 {
		return "", false
	}
	h, err := hashstructure.Hash(struct {
		Category     string
		Conversation Conversation
	}{category, conv}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("gen:%016x", h), true
}

func (r *Router) memoize(key string, keyed bool, text string) {
	if keyed {
		r.memo.Put(key, text, r.cfg.CacheTTL)
	}
}
