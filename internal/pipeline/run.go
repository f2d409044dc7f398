package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/researchpilot/researchpilot/internal/agent"
)

// RunStatus is the overall disposition of one pipeline run. Partial
// success is a first-class outcome, not an error state.
type RunStatus string

const (
	RunComplete  RunStatus = "complete"  // Every stage succeeded
	RunPartial   RunStatus = "partial"   // Some stages succeeded, some failed
	RunFailed    RunStatus = "failed"    // No stage succeeded
	RunCancelled RunStatus = "cancelled" // Cancelled externally mid-run
)

// Run is the complete record of one end-to-end execution for one input.
type Run struct {
	ID        string // Correlation ID tying events and outcomes together
	Status    RunStatus
	Results   *ResultSet
	StartedAt time.Time
	Elapsed   time.Duration
}

// ResultSet accumulates terminal stage outcomes, keyed by stage name, in
// completion order. Each stage name is written at most once; the single
// writer is the orchestrator's scheduling loop, but reads may come from
// any goroutine.
type ResultSet struct {
	mu       sync.RWMutex
	order    []string
	outcomes map[string]agent.Outcome
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{outcomes: make(map[string]agent.Outcome)}
}

// Record stores a terminal outcome for the stage. Recording a stage twice
// or a non-terminal outcome is a programming error and is rejected.
func (rs *ResultSet) Record(stage string, out agent.Outcome) error {
	if !out.Status.Terminal() {
		return fmt.Errorf("stage %q outcome is not terminal (status %s)", stage, out.Status)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.outcomes[stage]; exists {
		return fmt.Errorf("stage %q already recorded", stage)
	}
	rs.outcomes[stage] = out
	rs.order = append(rs.order, stage)
	return nil
}

// Get returns the recorded outcome for a stage.
func (rs *ResultSet) Get(stage string) (agent.Outcome, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out, ok := rs.outcomes[stage]
	return out, ok
}

// Has reports whether the stage has reached a terminal state.
func (rs *ResultSet) Has(stage string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, ok := rs.outcomes[stage]
	return ok
}

// Stages returns stage names in completion order.
func (rs *ResultSet) Stages() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return append([]string(nil), rs.order...)
}

// Len returns the number of recorded outcomes.
func (rs *ResultSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.order)
}

// Successes counts terminal-successful outcomes.
func (rs *ResultSet) Successes() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	n := 0
	for _, out := range rs.outcomes {
		if out.Success() {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the outcomes for the given stage names,
// omitting stages without a terminal outcome.
func (rs *ResultSet) Snapshot(stages []string) map[string]agent.Outcome {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	snap := make(map[string]agent.Outcome, len(stages))
	for _, name := range stages {
		if out, ok := rs.outcomes[name]; ok {
			snap[name] = out
		}
	}
	return snap
}
