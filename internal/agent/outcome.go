package agent

import (
	"errors"
	"time"
)

// Status represents the current state of one agent execution.
type Status int

const (
	StatusIdle     Status = iota // Not started
	StatusRunning                // First attempt in flight
	StatusRetrying               // A retry attempt in flight
	StatusSuccess                // Terminal: output produced and validated
	StatusFailed                 // Terminal: retry budget exhausted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusRetrying:
		return "retrying"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the status is success or failed.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Error taxonomy for task execution. The executor wraps agent failures with
// these sentinels so callers can classify outcomes with errors.Is.
var (
	// ErrTaskExecution marks a failure raised by the agent's Run.
	ErrTaskExecution = errors.New("task execution failed")

	// ErrValidation marks an output rejected by the agent's Validate hook.
	ErrValidation = errors.New("output validation failed")
)

// Outcome is the terminal result of running one agent through the executor.
// Exactly one of Output and Err is set.
type Outcome struct {
	Status     Status
	Output     any           // Present iff Status == StatusSuccess
	Err        error         // Present iff Status == StatusFailed
	Elapsed    time.Duration // Wall-clock duration of the attempt sequence
	RetryCount int           // Retries consumed before the terminal state
}

// Success reports whether the outcome is terminal-successful.
func (o Outcome) Success() bool { return o.Status == StatusSuccess }

// Failed returns a synthetic failed Outcome carrying the given error.
// Used by the orchestrator for stages that never execute (upstream skip,
// run cancellation).
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
