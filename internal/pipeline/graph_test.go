package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/researchpilot/researchpilot/internal/agent"
)

func noop(name string, deps ...string) Stage {
	return Stage{
		Name:      name,
		DependsOn: deps,
		Runner: agent.Func{AgentName: name, RunFunc: func(_ context.Context, _ any) (any, error) {
			return name, nil
		}},
	}
}

func TestNewGraphValidation(t *testing.T) {
	tests := []struct {
		name        string
		stages      []Stage
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid linear chain",
			stages: []Stage{noop("a"), noop("b", "a"), noop("c", "b")},
		},
		{
			name:   "valid diamond",
			stages: []Stage{noop("a"), noop("b", "a"), noop("c", "a"), noop("d", "b", "c")},
		},
		{
			name:        "direct cycle",
			stages:      []Stage{noop("a", "b"), noop("b", "a")},
			wantErr:     true,
			errContains: "cycle",
		},
		{
			name:        "self loop",
			stages:      []Stage{noop("a", "a")},
			wantErr:     true,
			errContains: "cycle",
		},
		{
			name:        "undeclared dependency",
			stages:      []Stage{noop("a", "ghost")},
			wantErr:     true,
			errContains: "ghost",
		},
		{
			name:        "duplicate stage",
			stages:      []Stage{noop("a"), noop("a")},
			wantErr:     true,
			errContains: "twice",
		},
		{
			name:        "missing runner",
			stages:      []Stage{{Name: "a"}},
			wantErr:     true,
			errContains: "no runner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.stages...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGraph() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestGraphOrderRespectsDependencies(t *testing.T) {
	g, err := NewGraph(noop("a"), noop("b", "a"), noop("c", "b"), noop("d", "b"), noop("e", "c", "d"))
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	pos := map[string]int{}
	for i, name := range g.Order() {
		pos[name] = i
	}
	for _, st := range g.Stages() {
		for _, dep := range st.DependsOn {
			if pos[dep] >= pos[st.Name] {
				t.Errorf("dependency %q sorted after %q", dep, st.Name)
			}
		}
	}
}

func TestGraphClosure(t *testing.T) {
	g, err := NewGraph(noop("a"), noop("b", "a"), noop("c", "b"), noop("d", "c"))
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	want := []string{"a", "b", "c"}
	if got := g.Closure("d"); !reflect.DeepEqual(got, want) {
		t.Errorf("Closure(d) = %v, want %v", got, want)
	}
	if got := g.Closure("a"); len(got) != 0 {
		t.Errorf("Closure(a) = %v, want empty", got)
	}
}

func TestResultSetRejectsDuplicatesAndNonTerminal(t *testing.T) {
	rs := NewResultSet()

	if err := rs.Record("a", agent.Outcome{Status: agent.StatusRunning}); err == nil {
		t.Error("expected rejection of non-terminal outcome")
	}

	ok := agent.Outcome{Status: agent.StatusSuccess, Output: 1}
	if err := rs.Record("a", ok); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := rs.Record("a", ok); err == nil {
		t.Error("expected rejection of duplicate stage")
	}

	if err := rs.Record("b", agent.Failed(errors.New("boom"))); err != nil {
		t.Fatalf("Record failed outcome: %v", err)
	}
	if got := rs.Stages(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Stages() = %v", got)
	}
	if rs.Successes() != 1 {
		t.Errorf("Successes() = %d, want 1", rs.Successes())
	}
}
