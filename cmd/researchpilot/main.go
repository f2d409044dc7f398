package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	// Signal-aware context so Ctrl+C cancels an in-flight run; the
	// orchestrator records whatever finished and marks the run cancelled.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "researchpilot",
	})

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "researchpilot",
		Usage:    "Analyze research papers through a multi-stage agent pipeline",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
