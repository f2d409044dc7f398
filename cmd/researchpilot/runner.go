package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/researchpilot/researchpilot/internal/agent"
	"github.com/researchpilot/researchpilot/internal/analysis"
	"github.com/researchpilot/researchpilot/internal/cache"
	"github.com/researchpilot/researchpilot/internal/config"
	"github.com/researchpilot/researchpilot/internal/pipeline"
	"github.com/researchpilot/researchpilot/internal/progress"
	"github.com/researchpilot/researchpilot/internal/provider"
	"github.com/researchpilot/researchpilot/internal/scholar"
	"github.com/researchpilot/researchpilot/internal/store"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{logger: opts.Logger, output: opts.Output}
}

// stack is the fully wired pipeline for one invocation.
type stack struct {
	orch  *pipeline.Orchestrator
	store store.Store
}

// buildStack wires providers, router, scholar client, agents, executor and
// orchestrator from the merged configuration.
func (r *Runner) buildStack(ctx context.Context, cfg *config.Config, dbPath string) (*stack, error) {
	providers := make(map[string]provider.Provider, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		p, err := provider.New(name, provider.Config{
			Type:      pc.Type,
			BaseURL:   pc.BaseURL,
			APIKeyEnv: pc.APIKeyEnv,
			Timeout:   time.Duration(pc.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		providers[name] = p
	}

	routes := make(map[string]provider.Route, len(cfg.Routes))
	for category, rc := range cfg.Routes {
		routes[category] = provider.Route{Provider: rc.Provider, Model: rc.Model}
	}
	router := provider.NewRouter(providers, provider.RouterConfig{
		Routes:   routes,
		Default:  provider.Route{Provider: cfg.Default.Provider, Model: cfg.Default.Model},
		Fallback: provider.Route{Provider: cfg.Fallback.Provider, Model: cfg.Fallback.Model},
		CacheTTL: time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
	}, cache.NewMemory(), r.logger)

	searcher := scholar.NewClient(scholar.Config{
		BaseURL:           cfg.Scholar.BaseURL,
		RequestsPerSecond: cfg.Scholar.RequestsPerSecond,
	}, r.logger)

	graph, err := analysis.NewGraph(router, searcher)
	if err != nil {
		return nil, fmt.Errorf("building stage graph: %w", err)
	}

	exec := agent.NewExecutor(agent.ExecutorConfig{
		MaxRetries: cfg.Retry.MaxRetries,
		NewBackoff: backoffFactory(cfg.Retry),
		Logger:     r.logger,
	})

	orch := pipeline.New(graph, exec, nil, pipeline.Config{
		MaxConcurrent: cfg.Pipeline.MaxConcurrent,
		Logger:        r.logger,
	})

	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	runStore, err := store.NewSQLiteStore(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}

	return &stack{orch: orch, store: runStore}, nil
}

// backoffFactory honors the configured initial interval, falling back to
// the executor's default policy.
func backoffFactory(rc config.RetryConfig) agent.BackoffFactory {
	if rc.InitialBackoffMS <= 0 {
		return nil
	}
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = time.Duration(rc.InitialBackoffMS) * time.Millisecond
		b.MaxElapsedTime = 0
		return b
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, runsCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load("", path)
	}
	return config.LoadDefault()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

// stageSummary is the per-stage line in run output.
type stageSummary struct {
	Stage   string `json:"stage"`
	Status  string `json:"status"`
	Retries int    `json:"retries,omitempty"`
	Elapsed string `json:"elapsed"`
	Error   string `json:"error,omitempty"`
}

// runSummary is the top-level run output.
type runSummary struct {
	ID      string         `json:"id"`
	Status  string         `json:"status"`
	Elapsed string         `json:"elapsed"`
	Stages  []stageSummary `json:"stages"`
}

func summarize(run *pipeline.Run) runSummary {
	summary := runSummary{
		ID:      run.ID,
		Status:  string(run.Status),
		Elapsed: run.Elapsed.Round(time.Millisecond).String(),
	}
	for _, stage := range run.Results.Stages() {
		out, _ := run.Results.Get(stage)
		s := stageSummary{
			Stage:   stage,
			Status:  out.Status.String(),
			Retries: out.RetryCount,
			Elapsed: out.Elapsed.Round(time.Millisecond).String(),
		}
		if out.Err != nil {
			s.Error = out.Err.Error()
		}
		summary.Stages = append(summary.Stages, s)
	}
	return summary
}

// logProgress subscribes a structured-logging sink to pipeline events.
func (r *Runner) logProgress(emitter *progress.Emitter) {
	emitter.Subscribe(func(ev progress.Event) {
		switch ev.Phase {
		case progress.PhaseFailed:
			r.logger.Warn("stage failed", "stage", ev.Stage, "run", ev.CorrelationID, "detail", ev.Detail)
		default:
			r.logger.Info("stage "+string(ev.Phase), "stage", ev.Stage, "run", ev.CorrelationID)
		}
	})
}
