package pipeline

import (
	"errors"

	"github.com/researchpilot/researchpilot/internal/agent"
)

// Canonical stage names for the fixed analysis graph.
const (
	StageIngest       = "ingest"
	StageExtract      = "extract"
	StageSimplify     = "simplify"
	StageFindRelated  = "find-related"
	StageGenerateCode = "generate-code"
	StageReview       = "synthesize-review"
	StageAnalyzeGaps  = "analyze-gaps"
)

// UpstreamPolicy decides what happens to a stage when one of its
// dependencies fails: attempt a degraded run with the surviving inputs, or
// hard-skip with an upstream-dependency failure.
type UpstreamPolicy int

const (
	// Degrade runs the stage anyway; the failed dependency's outcome is
	// visible in the stage input and the task decides what it can do.
	Degrade UpstreamPolicy = iota

	// Skip records a synthetic failed outcome without running the stage.
	Skip
)

// String returns the policy name.
func (p UpstreamPolicy) String() string {
	if p == Skip {
		return "skip"
	}
	return "degrade"
}

// Stage binds a name and dependency set to the agent that executes it.
// Stage descriptors are static configuration; the graph never changes at
// runtime.
type Stage struct {
	Name      string
	DependsOn []string
	Policy    UpstreamPolicy
	Runner    agent.Agent
}

// StageInput is what a stage's agent receives: the run's original document
// and the terminal outcomes of every (transitive) dependency. A failed
// dependency appears as its failed Outcome, so degraded runs can see
// exactly what survived.
type StageInput struct {
	Document any
	Upstream map[string]agent.Outcome
}

// Output returns the successful output of an upstream stage, if any.
func (in StageInput) Output(stage string) (any, bool) {
	out, ok := in.Upstream[stage]
	if !ok || !out.Success() {
		return nil, false
	}
	return out.Output, true
}

// Orchestration error taxonomy.
var (
	// ErrUpstreamDependency marks a stage that never ran because a required
	// predecessor did not succeed. It is recorded, never thrown.
	ErrUpstreamDependency = errors.New("upstream dependency failed")

	// ErrStructural marks a run that cannot begin at all. It is the only
	// condition Execute reports as a top-level error.
	ErrStructural = errors.New("structural error")
)
