package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/researchpilot/researchpilot/internal/agent"
	"github.com/researchpilot/researchpilot/internal/config"
	"github.com/researchpilot/researchpilot/internal/pipeline"
)

// TestBuildStackFromDefaults verifies the whole dependency graph wires up
// from the default configuration without touching the network.
func TestBuildStackFromDefaults(t *testing.T) {
	r := NewRunner(RunnerOpts{})

	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "runs.db")

	st, err := r.buildStack(context.Background(), cfg, "")
	if err != nil {
		t.Fatalf("building stack: %v", err)
	}
	defer st.store.Close()

	if st.orch == nil {
		t.Fatal("expected orchestrator")
	}
}

func TestBuildStackRejectsUnknownProviderType(t *testing.T) {
	r := NewRunner(RunnerOpts{})

	cfg := config.DefaultConfig()
	cfg.Providers["weird"] = config.ProviderConfig{Type: "carrier-pigeon"}
	cfg.Store.Path = filepath.Join(t.TempDir(), "runs.db")

	if _, err := r.buildStack(context.Background(), cfg, ""); err == nil {
		t.Fatal("expected error for unknown provider type")
	}
}

func TestBackoffFactory(t *testing.T) {
	if backoffFactory(config.RetryConfig{}) != nil {
		t.Error("zero initial backoff should use the executor default")
	}

	factory := backoffFactory(config.RetryConfig{InitialBackoffMS: 250})
	if factory == nil {
		t.Fatal("expected custom factory")
	}
	b := factory()
	if d := b.NextBackOff(); d <= 0 || d > time.Second {
		t.Errorf("first backoff = %v, want near 250ms", d)
	}
}

func TestSummarize(t *testing.T) {
	results := pipeline.NewResultSet()
	if err := results.Record(pipeline.StageIngest, agent.Outcome{
		Status:  agent.StatusSuccess,
		Elapsed: 10 * time.Millisecond,
	}); err != nil {
		t.Fatal(err)
	}
	if err := results.Record(pipeline.StageExtract, agent.Outcome{
		Status:     agent.StatusFailed,
		Err:        errors.New("boom"),
		RetryCount: 2,
	}); err != nil {
		t.Fatal(err)
	}

	summary := summarize(&pipeline.Run{
		ID:      "run-1",
		Status:  pipeline.RunPartial,
		Results: results,
		Elapsed: 1500 * time.Millisecond,
	})

	if summary.Status != "partial" || summary.Elapsed != "1.5s" {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Stages) != 2 {
		t.Fatalf("stages = %d", len(summary.Stages))
	}
	if summary.Stages[1].Error != "boom" || summary.Stages[1].Retries != 2 {
		t.Errorf("failed stage = %+v", summary.Stages[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(RunnerOpts{Output: &buf})

	if err := r.writeJSON(map[string]string{"id": "run-1"}, false); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("output should end with newline")
	}

	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["id"] != "run-1" {
		t.Errorf("decoded = %v", decoded)
	}
}
