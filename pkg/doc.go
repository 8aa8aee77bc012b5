// Package pkg provides the core libraries for linebalance assembly line balancing.
//
// # Overview
//
// Linebalance assigns the tasks of an assembly process to a sequence of
// workstations so that precedence constraints hold and station loads stay
// within the cycle time. The pkg directory is organized into three main areas:
//
//  1. Domain logic (precedence graphs, plans, bounds, scoring, heuristics)
//  2. Infrastructure (caching, observability, structured errors)
//  3. Orchestration (the pipeline shared by CLI and API)
//
// # Architecture
//
// The typical data flow through linebalance:
//
//	Instance file (JSON)
//	         ↓
//	    [instance] package (decode + validate)
//	         ↓
//	    [plan] + [precedence] packages (problem model + graph utilities)
//	         ↓
//	    [bounds] package (per-task station intervals)
//	         ↓
//	    [construct] package (constructive heuristics)
//	         ↓
//	    [score] package (lexicographic evaluation, cross-checked)
//	         ↓
//	    [render] package (DOT/SVG diagrams)
//
// # Quick Start
//
// Build and score an assignment:
//
//	import (
//	    "github.com/matzehuels/linebalance/pkg/construct"
//	    "github.com/matzehuels/linebalance/pkg/plan"
//	    "github.com/matzehuels/linebalance/pkg/score"
//	)
//
//	// 1. Model the problem
//	prob := plan.Problem{
//	    Tasks:     []plan.TaskSpec{{ID: 0, Time: 10}, {ID: 1, Time: 12, Predecessors: []int{0}}},
//	    CycleTime: 25,
//	}
//
//	// 2. Construct a feasible assignment
//	p, _ := construct.Build(prob, 42, construct.BreadthFirst)
//
//	// 3. Score it with both engines
//	s, _ := score.CrossCheck(p)
//	fmt.Println(s, s.Feasible())
//
// # Main Packages
//
// ## Domain Logic
//
// [precedence] - Directed acyclic precedence graphs: topological ordering,
// layering, deep predecessor and successor closures, graph flipping.
//
// [plan] - The problem model. A Problem declares tasks, times, and either a
// cycle time (type 1) or a station count (type 2); a Plan tracks a mutable
// task-to-station assignment over it.
//
// [bounds] - Per-task station intervals from predecessor and successor
// workload, used to prune infeasible placements before construction.
//
// [score] - Lexicographic scoring (hard, medium, soft) with two independent
// engines: a readable reference measure and an optimized evaluator, with a
// cross-check that fails loudly when they disagree.
//
// [construct] - Constructive heuristics: random-feasible, breadth-first,
// compacting-breadth-first, and depth-first, all deterministic per seed.
//
// [search] - Adapters for an external search driver: a bounds-based move
// filter for task-to-station reassignments, a station distance metric, and
// value-ordering priorities that schedule harder tasks first.
//
// ## Infrastructure
//
// [cache] - Content-addressed result caching with file, Redis, and null
// backends plus TTL policies for plans, bounds, and rendered artifacts.
//
// [observability] - Hook interfaces for solver and cache events with a
// process-wide registry, used by the pipeline to publish stage timings.
//
// [errors] - Structured error codes shared by CLI and API.
//
// [buildinfo] - Build-time version information injected via ldflags.
//
// ## Orchestration
//
// [pipeline] - The analyze → construct → evaluate → render pipeline used by
// CLI and API. Ensures consistent behavior across all entry points.
//
// [instance] - JSON codec for problem instances.
//
// [render] - Graphviz DOT and SVG output for plans.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/score/...     # Specific package
//
// [precedence]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/precedence
// [plan]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/plan
// [bounds]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/bounds
// [score]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/score
// [construct]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/construct
// [search]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/search
// [cache]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/buildinfo
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/pipeline
// [instance]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/instance
// [render]: https://pkg.go.dev/github.com/matzehuels/linebalance/pkg/render
package pkg
