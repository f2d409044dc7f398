package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gammazero/toposort"
)

// Graph is the validated, immutable stage graph for a pipeline. Construct
// it once with NewGraph; per-run state lives in the Run, never here.
type Graph struct {
	stages  map[string]Stage
	names   []string            // declaration order
	order   []string            // topological order
	closure map[string][]string // stage -> transitive dependency set, sorted
}

// NewGraph builds and validates a graph from the given stage descriptors.
// It rejects duplicate names, references to undeclared stages, and cycles.
func NewGraph(stages ...Stage) (*Graph, error) {
	g := &Graph{
		stages:  make(map[string]Stage, len(stages)),
		closure: make(map[string][]string, len(stages)),
	}

	for _, st := range stages {
		if st.Name == "" {
			return nil, fmt.Errorf("stage with empty name")
		}
		if st.Runner == nil {
			return nil, fmt.Errorf("stage %q has no runner", st.Name)
		}
		if _, exists := g.stages[st.Name]; exists {
			return nil, fmt.Errorf("stage %q declared twice", st.Name)
		}
		g.stages[st.Name] = st
		g.names = append(g.names, st.Name)
	}

	for name, st := range g.stages {
		for _, dep := range st.DependsOn {
			if _, exists := g.stages[dep]; !exists {
				return nil, fmt.Errorf("stage %q depends on undeclared stage %q", name, dep)
			}
		}
	}

	order, err := g.sort()
	if err != nil {
		return nil, err
	}
	g.order = order

	for _, name := range g.names {
		g.closure[name] = g.computeClosure(name)
	}

	return g, nil
}

// sort runs topological sort over the dependency edges.
func (g *Graph) sort() ([]string, error) {
	var edges []toposort.Edge
	for name, st := range g.stages {
		if len(st.DependsOn) == 0 {
			// Root stage: edge from nil keeps it in the sorted output.
			edges = append(edges, toposort.Edge{nil, name})
			continue
		}
		for _, dep := range st.DependsOn {
			edges = append(edges, toposort.Edge{dep, name})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("stage graph contains cycle: %w", err)
	}

	order := make([]string, 0, len(g.stages))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}

	if len(order) != len(g.stages) {
		var missing []string
		seen := make(map[string]bool, len(order))
		for _, id := range order {
			seen[id] = true
		}
		for name := range g.stages {
			if !seen[name] {
				missing = append(missing, name)
			}
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("topological sort lost %d stages: %s", len(missing), strings.Join(missing, ", "))
	}

	return order, nil
}

// computeClosure returns the transitive dependency set of a stage, sorted
// for deterministic iteration.
func (g *Graph) computeClosure(name string) []string {
	seen := map[string]bool{}
	var walk func(string)
	walk = func(n string) {
		for _, dep := range g.stages[n].DependsOn {
			if !seen[dep] {
				seen[dep] = true
				walk(dep)
			}
		}
	}
	walk(name)

	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// Stages returns all stage descriptors in declaration order.
func (g *Graph) Stages() []Stage {
	out := make([]Stage, 0, len(g.names))
	for _, name := range g.names {
		out = append(out, g.stages[name])
	}
	return out
}

// Get returns a stage descriptor by name.
func (g *Graph) Get(name string) (Stage, bool) {
	st, ok := g.stages[name]
	return st, ok
}

// Order returns the topologically sorted stage names.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Closure returns the transitive dependency set of a stage.
func (g *Graph) Closure(name string) []string {
	return append([]string(nil), g.closure[name]...)
}

// Len returns the number of stages.
func (g *Graph) Len() int { return len(g.stages) }
