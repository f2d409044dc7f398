package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

// DefaultMaxRetries is the retry budget used when ExecutorConfig leaves
// MaxRetries unset.
const DefaultMaxRetries = 3

// BackoffFactory produces a fresh backoff policy for one execution.
// Policies are stateful, so the executor needs a new one per call.
type BackoffFactory func() backoff.BackOff

// ExecutorConfig configures the retry executor.
type ExecutorConfig struct {
	MaxRetries int            // Retry budget per execution (default DefaultMaxRetries)
	NewBackoff BackoffFactory // Inter-attempt delay policy (default exponential)
	Logger     *log.Logger    // Optional; nil disables executor logging
}

// DefaultBackoff returns the standard exponential policy used between
// retry attempts: 500ms initial, doubling, capped at 10s, no overall
// elapsed-time limit (the retry budget bounds the attempt count).
func DefaultBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.Multiplier = 2.0
	bo.MaxElapsedTime = 0
	return bo
}

// NoBackoff returns a zero-delay policy. Tests use it to keep retry loops
// fast without changing the executor contract.
func NoBackoff() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

// Executor turns a possibly-flaky agent invocation into a terminal Outcome
// with bounded retries and timing. Failure is always a return value; no
// error crosses the executor boundary as anything but a failed Outcome.
//
// The executor also tracks a live, externally inspectable status per agent
// name (idle -> running -> retrying* -> success|failed), updated
// synchronously on every transition.
type Executor struct {
	maxRetries int
	newBackoff BackoffFactory
	logger     *log.Logger

	mu       sync.RWMutex
	statuses map[string]Status
}

// NewExecutor creates an Executor from the given config, applying defaults.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.NewBackoff == nil {
		cfg.NewBackoff = DefaultBackoff
	}
	return &Executor{
		maxRetries: cfg.MaxRetries,
		newBackoff: cfg.NewBackoff,
		logger:     cfg.Logger,
		statuses:   make(map[string]Status),
	}
}

// MaxRetries returns the configured retry budget.
func (e *Executor) MaxRetries() int { return e.maxRetries }

// Status returns the last observed status for the named agent.
// Agents that have never executed report StatusIdle.
func (e *Executor) Status(name string) Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.statuses[name]
}

func (e *Executor) setStatus(name string, s Status) {
	e.mu.Lock()
	e.statuses[name] = s
	e.mu.Unlock()
}

// Execute runs the agent with bounded retries and returns a terminal
// Outcome. A Run error or a Validate rejection consumes one retry; once the
// budget is exhausted the last error is returned inside a failed Outcome.
// Context cancellation stops the retry loop at the next boundary and is
// reported the same way.
func (e *Executor) Execute(ctx context.Context, ag Agent, input any) Outcome {
	start := time.Now()
	name := ag.Name()
	bo := e.newBackoff()
	bo.Reset()

	var lastErr error
	retries := 0

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt == 0 {
			e.setStatus(name, StatusRunning)
		} else {
			retries = attempt
			e.setStatus(name, StatusRetrying)
		}
		if e.logger != nil {
			e.logger.Debug("executing agent", "agent", name, "attempt", attempt+1)
		}

		output, err := ag.Run(ctx, input)
		if err != nil {
			lastErr = fmt.Errorf("%w: %w", ErrTaskExecution, err)
		} else {
			output, err = ag.Validate(ctx, output)
			if err != nil {
				lastErr = fmt.Errorf("%w: %w", ErrValidation, err)
			} else {
				e.setStatus(name, StatusSuccess)
				return Outcome{
					Status:     StatusSuccess,
					Output:     output,
					Elapsed:    time.Since(start),
					RetryCount: attempt,
				}
			}
		}

		if e.logger != nil {
			e.logger.Warn("agent attempt failed", "agent", name, "attempt", attempt+1, "err", err)
		}

		// A cancelled run would fail every further attempt the same way.
		if ctx.Err() != nil {
			break
		}
		if attempt == e.maxRetries {
			break
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
			}
			if ctx.Err() != nil {
				break
			}
		}
	}

	e.setStatus(name, StatusFailed)
	return Outcome{
		Status:     StatusFailed,
		Err:        lastErr,
		Elapsed:    time.Since(start),
		RetryCount: retries,
	}
}
