package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/researchpilot/researchpilot/internal/agent"
	"github.com/researchpilot/researchpilot/internal/progress"
)

// Config tunes the orchestrator.
type Config struct {
	MaxConcurrent int         // Bound on concurrently executing stages (default 4)
	Logger        *log.Logger // Optional
}

// Orchestrator executes the fixed stage graph for one input end-to-end,
// running independent stages concurrently and aggregating every outcome
// into a Run. It never retries whole stages (that is the executor's job)
// and never raises for an individual stage failure.
type Orchestrator struct {
	graph         *Graph
	exec          *agent.Executor
	emitter       *progress.Emitter
	logger        *log.Logger
	maxConcurrent int
}

// New creates an orchestrator over a validated graph.
func New(graph *Graph, exec *agent.Executor, emitter *progress.Emitter, cfg Config) *Orchestrator {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if emitter == nil {
		emitter = progress.NewEmitter(cfg.Logger)
	}
	return &Orchestrator{
		graph:         graph,
		exec:          exec,
		emitter:       emitter,
		logger:        cfg.Logger,
		maxConcurrent: cfg.MaxConcurrent,
	}
}

// Emitter returns the progress emitter external transports subscribe to.
func (o *Orchestrator) Emitter() *progress.Emitter { return o.emitter }

type completion struct {
	stage   string
	outcome agent.Outcome
}

// Execute runs the full graph for one parsed document. It returns an error
// only for structural problems that prevent the run from beginning; stage
// failures are recorded in the Run. Every stage in the graph appears in
// Results exactly once, in completion order.
func (o *Orchestrator) Execute(ctx context.Context, doc any) (*Run, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no parsed document provided", ErrStructural)
	}

	run := &Run{
		ID:        uuid.NewString(),
		Results:   NewResultSet(),
		StartedAt: time.Now(),
	}

	total := o.graph.Len()
	done := make(chan completion, total)
	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)

	launched := make(map[string]bool, total)
	inFlight := 0

	for run.Results.Len() < total {
		if ctx.Err() == nil {
			inFlight += o.launchEligible(ctx, &g, run, doc, launched, done)
		}
		if inFlight == 0 {
			break
		}
		c := <-done
		inFlight--
		o.record(run, c.stage, c.outcome)
	}
	_ = g.Wait()

	o.finalize(ctx, run)
	return run, nil
}

// launchEligible starts every not-yet-launched stage whose dependencies
// have all settled. Skip-policy stages with a failed dependency settle
// immediately with a synthetic outcome, which can unlock further stages in
// the same pass. Returns the number of goroutines started.
func (o *Orchestrator) launchEligible(ctx context.Context, g *errgroup.Group, run *Run, doc any, launched map[string]bool, done chan<- completion) int {
	started := 0
	progressed := true
	for progressed {
		progressed = false
		for _, st := range o.graph.Stages() {
			if launched[st.Name] || !o.depsSettled(run, st) {
				continue
			}
			launched[st.Name] = true

			if st.Policy == Skip {
				if dep := o.failedDependency(run, st); dep != "" {
					out := agent.Failed(fmt.Errorf("%w: stage %q did not succeed", ErrUpstreamDependency, dep))
					o.record(run, st.Name, out)
					progressed = true
					continue
				}
			}

			o.emit(run, st.Name, progress.PhaseStarted, "")
			input := StageInput{
				Document: doc,
				Upstream: run.Results.Snapshot(o.graph.Closure(st.Name)),
			}
			stage := st
			started++
			g.Go(func() error {
				done <- completion{stage.Name, o.exec.Execute(ctx, stage.Runner, input)}
				return nil
			})
		}
	}
	return started
}

// depsSettled reports whether every direct dependency has a terminal
// outcome (success, failure, or skip).
func (o *Orchestrator) depsSettled(run *Run, st Stage) bool {
	for _, dep := range st.DependsOn {
		if !run.Results.Has(dep) {
			return false
		}
	}
	return true
}

// failedDependency returns the first declared dependency that settled
// without success, or "" when all succeeded.
func (o *Orchestrator) failedDependency(run *Run, st Stage) string {
	for _, dep := range st.DependsOn {
		if out, ok := run.Results.Get(dep); ok && !out.Success() {
			return dep
		}
	}
	return ""
}

// record stores a terminal outcome and emits the matching progress event.
// Called only from the scheduling loop, which keeps event order and
// completion order consistent for all subscribers.
func (o *Orchestrator) record(run *Run, stage string, out agent.Outcome) {
	if err := run.Results.Record(stage, out); err != nil {
		if o.logger != nil {
			o.logger.Error("failed to record stage outcome", "stage", stage, "err", err)
		}
		return
	}

	if out.Success() {
		o.emit(run, stage, progress.PhaseCompleted, "")
		return
	}
	detail := ""
	if out.Err != nil {
		detail = out.Err.Error()
	}
	o.emit(run, stage, progress.PhaseFailed, detail)
}

func (o *Orchestrator) emit(run *Run, stage string, phase progress.Phase, detail string) {
	o.emitter.Emit(progress.Event{
		Stage:         stage,
		Phase:         phase,
		Detail:        detail,
		CorrelationID: run.ID,
	})
}

// finalize settles any stages interrupted by cancellation and computes the
// overall run status.
func (o *Orchestrator) finalize(ctx context.Context, run *Run) {
	if err := ctx.Err(); err != nil {
		for _, st := range o.graph.Stages() {
			if run.Results.Has(st.Name) {
				continue
			}
			o.record(run, st.Name, agent.Failed(fmt.Errorf("run cancelled before stage executed: %w", err)))
		}
		run.Status = RunCancelled
		run.Elapsed = time.Since(run.StartedAt)
		return
	}

	switch succ := run.Results.Successes(); {
	case succ == o.graph.Len():
		run.Status = RunComplete
	case succ == 0:
		run.Status = RunFailed
	default:
		run.Status = RunPartial
	}
	run.Elapsed = time.Since(run.StartedAt)
}
