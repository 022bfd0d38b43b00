// Package domain contains the core domain models and business logic for the namespace versioning pipeline.
package domain

import (
	"iter"
	"slices"
)

// StageNode is one step of the per-module pipeline.
type StageNode struct {
	Stage    Stage
	Requires []Stage
	// Barrier stages run once per revision, after every module completed the stages they require.
	Barrier bool
}

// StageGraph represents the dependency graph of pipeline stages.
type StageGraph struct {
	nodes          map[Stage]StageNode
	executionOrder []Stage
}

// NewStageGraph creates a new empty StageGraph.
func NewStageGraph() *StageGraph {
	return &StageGraph{
		nodes: make(map[Stage]StageNode),
	}
}

// DefaultStageGraph returns the validated pipeline:
// vendoring, then rewriting, then renaming, then the wrapper generation barrier.
func DefaultStageGraph() *StageGraph {
	g := NewStageGraph()
	for _, n := range []StageNode{
		{Stage: StageVendoring},
		{Stage: StageRewriting, Requires: []Stage{StageVendoring}},
		{Stage: StageRenaming, Requires: []Stage{StageRewriting}},
		{Stage: StageWrapperGeneration, Requires: []Stage{StageRenaming}, Barrier: true},
	} {
		if err := g.AddStage(n); err != nil {
			panic(err)
		}
	}
	if err := g.Validate(); err != nil {
		panic(err)
	}
	return g
}

// AddStage adds a stage to the graph.
// It returns an error if the stage already exists.
func (g *StageGraph) AddStage(n StageNode) error {
	if _, exists := g.nodes[n.Stage]; exists {
		return Tag(ErrStageAlreadyExists, "stage", string(n.Stage))
	}
	g.nodes[n.Stage] = n
	return nil
}

// Validate checks for cycles and missing stages using a topological sort.
// It populates the execution order, visiting stages in name order so the result is stable.
func (g *StageGraph) Validate() error {
	g.executionOrder = make([]Stage, 0, len(g.nodes))
	visited := make(map[Stage]int) // 0: unvisited, 1: visiting, 2: visited
	var path []Stage

	var visit func(u Stage) error
	visit = func(u Stage) error {
		visited[u] = 1
		path = append(path, u)

		node, exists := g.nodes[u]
		if !exists {
			return Tag(ErrMissingDependency, "stage", string(u))
		}

		for _, dep := range node.Requires {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	names := make([]Stage, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *StageGraph) buildCycleError(path []Stage, dep Stage) error {
	cyclePath := ""
	startIdx := -1
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += string(path[i]) + " -> "
	}
	cyclePath += string(dep)
	return Tag(ErrCycleDetected, "cycle", cyclePath)
}

// Requires returns the stages that must complete before s may start.
func (g *StageGraph) Requires(s Stage) []Stage {
	return g.nodes[s].Requires
}

// Walk returns an iterator that yields stages in execution order.
// It assumes Validate() has been called and returned nil.
func (g *StageGraph) Walk() iter.Seq[StageNode] {
	return func(yield func(StageNode) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.nodes[name]) {
				return
			}
		}
	}
}

// PerModule yields the non-barrier stages in execution order.
func (g *StageGraph) PerModule() iter.Seq[StageNode] {
	return func(yield func(StageNode) bool) {
		for n := range g.Walk() {
			if n.Barrier {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Barriers yields the barrier stages in execution order.
func (g *StageGraph) Barriers() iter.Seq[StageNode] {
	return func(yield func(StageNode) bool) {
		for n := range g.Walk() {
			if !n.Barrier {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}
