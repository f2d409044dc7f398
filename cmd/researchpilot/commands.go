// submodule cmd contains command definitions
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/researchpilot/researchpilot/internal/analysis"
	"github.com/researchpilot/researchpilot/internal/config"
	"github.com/researchpilot/researchpilot/internal/store"
	"github.com/urfave/cli/v3"
)

// runCommand executes the full analysis pipeline for one parsed document.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the analysis pipeline on a parsed paper",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the parsed document JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the run database (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Run,
	}
}

// runsCommand inspects persisted runs.
func runsCommand(r *Runner) *cli.Command {
	dbFlag := &cli.StringFlag{
		Name:  "db",
		Usage: "Path to the run database (overrides config)",
	}
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect past pipeline runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					dbFlag,
					configFlag,
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RunsList,
			},
			{
				Name:      "show",
				Usage:     "Show one run with its stage outcomes",
				ArgsUsage: "<run-id>",
				Flags: []cli.Flag{
					dbFlag,
					configFlag,
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RunsShow,
			},
		},
	}
}

// configCommand manages configuration files.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default configuration to the project config path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination path",
						Value:   filepath.Join(".researchpilot", "config.json"),
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:  "show",
				Usage: "Print the merged effective configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ConfigShow,
			},
		},
	}
}

// Run loads the parsed document, executes the pipeline and persists the run.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}

	cfg, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.String("input"))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	var doc analysis.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing input document: %w", err)
	}

	st, err := r.buildStack(ctx, cfg, cmd.String("db"))
	if err != nil {
		return err
	}
	defer st.store.Close()

	r.logProgress(st.orch.Emitter())

	run, err := st.orch.Execute(ctx, &doc)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	// Persist even when the run was cancelled mid-flight
	if err := st.store.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Error("failed to persist run", "run", run.ID, "err", err)
	}

	return r.writeJSON(summarize(run), cmd.Bool("pretty"))
}

// RunsList prints recent run summaries.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListRuns(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	out := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]string{
			"id":      rec.ID,
			"status":  string(rec.Status),
			"started": rec.StartedAt.Format("2006-01-02 15:04:05"),
			"elapsed": rec.Elapsed.String(),
		})
	}
	return r.writeJSON(out, cmd.Bool("pretty"))
}

// RunsShow prints one run with full stage outcomes.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.Args().First()
	if runID == "" {
		return fmt.Errorf("usage: researchpilot runs show <run-id>")
	}

	st, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	type stageView struct {
		Stage   string          `json:"stage"`
		Status  string          `json:"status"`
		Retries int             `json:"retries,omitempty"`
		Elapsed string          `json:"elapsed"`
		Error   string          `json:"error,omitempty"`
		Output  json.RawMessage `json:"output,omitempty"`
	}
	view := struct {
		ID      string      `json:"id"`
		Status  string      `json:"status"`
		Started string      `json:"started"`
		Elapsed string      `json:"elapsed"`
		Stages  []stageView `json:"stages"`
	}{
		ID:      rec.ID,
		Status:  string(rec.Status),
		Started: rec.StartedAt.Format("2006-01-02 15:04:05"),
		Elapsed: rec.Elapsed.String(),
	}
	for _, s := range rec.Stages {
		view.Stages = append(view.Stages, stageView{
			Stage:   s.Stage,
			Status:  s.Status,
			Retries: s.RetryCount,
			Elapsed: s.Elapsed.String(),
			Error:   s.Error,
			Output:  s.Output,
		})
	}
	return r.writeJSON(view, cmd.Bool("pretty"))
}

// ConfigInit writes the default configuration.
func (r *Runner) ConfigInit(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := config.Save(config.DefaultConfig(), path); err != nil {
		return err
	}
	r.logger.Info("wrote default config", "path", path)
	return nil
}

// ConfigShow prints the merged effective configuration.
func (r *Runner) ConfigShow(_ context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	return r.writeJSON(cfg, cmd.Bool("pretty"))
}

func (r *Runner) openStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	dbPath := cmd.String("db")
	if dbPath == "" {
		cfg, err := r.loadConfig(cmd.String("config"))
		if err != nil {
			return nil, err
		}
		dbPath = cfg.Store.Path
	}
	return store.NewSQLiteStore(ctx, dbPath)
}
