package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
)

// BreakerRegistry manages per-provider circuit breakers so a misbehaving
// backend stops receiving traffic while its fallback keeps serving.
type BreakerRegistry struct {
	mu       sync.Mutex
	logger   *log.Logger
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakerRegistry creates an empty registry.
func NewBreakerRegistry(logger *log.Logger) *BreakerRegistry {
	return &BreakerRegistry{
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Get returns the circuit breaker for the given provider, creating it on
// first access.
func (r *BreakerRegistry) Get(providerName string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[providerName]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        providerName,
		MaxRequests: 3,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if r.logger != nil {
				r.logger.Warn("circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
			}
		},
		IsSuccessful: func(err error) bool {
			// User cancellation is not a backend failure.
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return false
		},
	})

	r.breakers[providerName] = cb
	return cb
}
