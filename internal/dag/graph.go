package dag

import (
	"fmt"

	"surfgen/internal/core"
)

type node struct {
	task core.Task
	id   core.Identity

	deps       []core.Identity
	dependents []core.Identity

	index int // position in leaves-first order
}

// Graph is the immutable dependency closure of a set of root tasks.
//
// It is built lazily from Task.Dependencies(), memoized by identity: two
// tasks with equal identity collapse into one node regardless of how many
// dependents declared them. Construction fails with ErrCyclicDependency
// before anything executes if the declarations form a cycle.
type Graph struct {
	nodes map[core.Identity]*node
	order []core.Identity // deterministic, dependencies before dependents
	roots []core.Identity
}

const (
	white = 0 // unvisited
	gray  = 1 // on the current DFS stack
	black = 2 // fully explored
)

// Build walks the dependency declarations of the given roots and returns
// the validated graph.
func Build(roots []core.Task) (*Graph, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no root tasks")
	}

	g := &Graph{nodes: make(map[core.Identity]*node)}
	color := make(map[core.Identity]int)
	var stack []core.Identity

	var visit func(t core.Task) error
	visit = func(t core.Task) error {
		id := t.Identity()
		switch color[id] {
		case black:
			return nil
		case gray:
			return core.CycleError(cyclePath(stack, id))
		}
		color[id] = gray
		stack = append(stack, id)

		deps, err := t.Dependencies()
		if err != nil {
			return fmt.Errorf("resolving dependencies of %s: %w", id, err)
		}

		n := &node{task: t, id: id}
		for _, d := range deps {
			n.deps = append(n.deps, d.Identity())
			if err := visit(d); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black

		// Post-order registration puts every dependency before its
		// dependents in g.order.
		n.index = len(g.order)
		g.nodes[id] = n
		g.order = append(g.order, id)
		return nil
	}

	for _, t := range roots {
		if t == nil {
			return nil, fmt.Errorf("nil root task")
		}
		if err := visit(t); err != nil {
			return nil, err
		}
		g.roots = append(g.roots, t.Identity())
	}

	for _, id := range g.order {
		for _, dep := range g.nodes[id].deps {
			d := g.nodes[dep]
			d.dependents = append(d.dependents, id)
		}
	}
	return g, nil
}

// cyclePath extracts the cycle witness ending at the repeated identity.
func cyclePath(stack []core.Identity, repeated core.Identity) []string {
	start := 0
	for i, id := range stack {
		if id == repeated {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, id := range stack[start:] {
		path = append(path, id.String())
	}
	return append(path, repeated.String())
}

// Len returns the number of distinct task identities in the graph.
func (g *Graph) Len() int { return len(g.order) }

// Order returns the identities with every dependency before its dependents.
func (g *Graph) Order() []core.Identity {
	out := make([]core.Identity, len(g.order))
	copy(out, g.order)
	return out
}

// Task returns the task instance for an identity.
func (g *Graph) Task(id core.Identity) (core.Task, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return n.task, true
}

// Dependencies returns the direct dependency identities of id.
func (g *Graph) Dependencies(id core.Identity) []core.Identity {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return append([]core.Identity(nil), n.deps...)
}

// Dependents returns the direct dependent identities of id.
func (g *Graph) Dependents(id core.Identity) []core.Identity {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return append([]core.Identity(nil), n.dependents...)
}
