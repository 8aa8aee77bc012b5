// Package precedence provides utilities over task precedence graphs.
//
// A precedence graph maps each task ID to the IDs of its immediate
// predecessors - the tasks that must be placed at the same station or
// earlier. All utilities in this package assume (and verify, where they
// traverse the full graph) that the relation is acyclic; cyclic input is
// reported as [ErrCycle].
//
// The package operates on plain integer IDs rather than richer task types so
// that it can serve as a leaf dependency for the plan, bounds, and
// construction packages.
package precedence

import (
	"errors"
	"maps"
	"slices"
)

// ErrCycle is returned when the precedence relation contains a directed
// cycle. Every operation that performs a full traversal detects cycles;
// callers may rely on acyclicity afterwards without re-validating.
var ErrCycle = errors.New("precedence graph contains a cycle")

// Graph maps a task ID to the IDs of its immediate predecessors.
// A task with no predecessors maps to an empty (or nil) slice.
type Graph map[int][]int

// Build reifies an immediate-predecessor mapping as a Graph.
//
// The input is copied, and every task referenced only as a predecessor is
// given an explicit entry, so the returned graph always has one key per task.
func Build(preds map[int][]int) Graph {
	g := make(Graph, len(preds))
	for id, ps := range preds {
		g[id] = slices.Clone(ps)
	}
	for _, ps := range preds {
		for _, p := range ps {
			if _, ok := g[p]; !ok {
				g[p] = nil
			}
		}
	}
	return g
}

// Flip derives the successor view from the predecessor view: the returned
// graph maps each task to the tasks that directly depend on it.
func (g Graph) Flip() Graph {
	flipped := make(Graph, len(g))
	for id := range g {
		flipped[id] = nil
	}
	for id, ps := range g {
		for _, p := range ps {
			flipped[p] = append(flipped[p], id)
		}
	}
	return flipped
}

// Roots returns the tasks with no predecessors, sorted by ID ascending.
func (g Graph) Roots() []int {
	var roots []int
	for id, ps := range g {
		if len(ps) == 0 {
			roots = append(roots, id)
		}
	}
	slices.Sort(roots)
	return roots
}

// TopologicalOrder returns a total order over all tasks in which every task
// appears after all of its predecessors. Ties are broken by task ID
// ascending, so the result is deterministic for a given graph.
//
// Returns ErrCycle if the graph contains a cycle.
func (g Graph) TopologicalOrder() ([]int, error) {
	succ := g.Flip()
	pending := make(map[int]int, len(g))

	// Ready tasks are kept sorted so the smallest ID is always taken first.
	var ready []int
	for id, ps := range g {
		pending[id] = len(ps)
		if len(ps) == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	order := make([]int, 0, len(g))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, s := range succ[id] {
			pending[s]--
			if pending[s] == 0 {
				at, _ := slices.BinarySearch(ready, s)
				ready = slices.Insert(ready, at, s)
			}
		}
	}

	if len(order) != len(g) {
		return nil, ErrCycle
	}
	return order, nil
}

// IsTopologicallySorted reports whether order is a permutation of the graph's
// tasks in which every task appears at or after all of its predecessors.
func (g Graph) IsTopologicallySorted(order []int) bool {
	if len(order) != len(g) {
		return false
	}
	pos := make(map[int]int, len(order))
	for i, id := range order {
		if _, dup := pos[id]; dup {
			return false
		}
		pos[id] = i
	}
	for id, ps := range g {
		at, ok := pos[id]
		if !ok {
			return false
		}
		for _, p := range ps {
			if pos[p] > at {
				return false
			}
		}
	}
	return true
}

// Layers partitions the tasks into ordered layers by longest path from a
// root: layer 0 holds the roots, and every other task sits one layer below
// its deepest predecessor. Tasks within a layer are sorted by ID ascending.
//
// A layer is fully "ready" once all earlier layers are placed, which makes
// the result directly usable for layer-by-layer construction.
//
// Returns ErrCycle if the graph contains a cycle.
func (g Graph) Layers() ([][]int, error) {
	depth, err := g.LayerMap()
	if err != nil {
		return nil, err
	}

	maxDepth := -1
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	layers := make([][]int, maxDepth+1)
	for _, id := range slices.Sorted(maps.Keys(depth)) {
		d := depth[id]
		layers[d] = append(layers[d], id)
	}
	return layers, nil
}

// LayerMap returns the same partition as [Graph.Layers] in task → layer-index
// form. Roots map to 0; every other task maps to one plus the maximum layer
// of its predecessors.
//
// Returns ErrCycle if the graph contains a cycle.
func (g Graph) LayerMap() (map[int]int, error) {
	succ := g.Flip()
	pending := make(map[int]int, len(g))
	depth := make(map[int]int, len(g))

	queue := make([]int, 0, len(g))
	for id, ps := range g {
		pending[id] = len(ps)
		if len(ps) == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++

		for _, s := range succ[id] {
			if d := depth[id] + 1; d > depth[s] {
				depth[s] = d
			}
			pending[s]--
			if pending[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if processed != len(g) {
		return nil, ErrCycle
	}
	return depth, nil
}

// DeepPredecessors computes the transitive predecessor set of every task.
// Each returned slice is sorted by ID ascending and excludes the task itself.
//
// Returns ErrCycle if the graph contains a cycle.
func (g Graph) DeepPredecessors() (map[int][]int, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	deep := make(map[int][]int, len(g))
	for _, id := range order {
		set := make(map[int]struct{})
		for _, p := range g[id] {
			set[p] = struct{}{}
			for _, pp := range deep[p] {
				set[pp] = struct{}{}
			}
		}
		deep[id] = slices.Sorted(maps.Keys(set))
	}
	return deep, nil
}

// DeepSuccessors computes the transitive successor set of every task, the
// mirror image of [Graph.DeepPredecessors].
func (g Graph) DeepSuccessors() (map[int][]int, error) {
	return g.Flip().DeepPredecessors()
}
