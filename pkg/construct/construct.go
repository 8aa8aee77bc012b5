// Package construct produces feasible starting assignments for an assembly
// line balancing problem. Four heuristics are provided, each exploring the
// precedence DAG differently; all of them honor precedence by construction
// and, where a fixed cycle time applies, station capacity.
//
// Construction is randomized but reproducible: every heuristic takes an
// explicit seed, and identical seed and input yield identical plans.
package construct

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/linebalance/pkg/bounds"
	"github.com/matzehuels/linebalance/pkg/plan"
)

// ErrUnknownStrategy is returned by [ParseStrategy] and [Build] for a
// strategy name outside the supported set.
var ErrUnknownStrategy = errors.New("unknown construction strategy")

// ErrOversizedTask is returned by [Build] when a fixed cycle time applies
// and some task cannot fit any station on its own. No assignment of such a
// task respects capacity, so construction refuses rather than emit a plan
// that violates it.
var ErrOversizedTask = errors.New("task time exceeds the cycle time")

// errIncomplete reports a heuristic defect: a task was left unplaced or
// placed twice. Construction guarantees every task lands in exactly one
// station, so this never surfaces from correct code.
var errIncomplete = errors.New("construction did not place every task exactly once")

// Strategy selects one of the constructive heuristics.
type Strategy int

const (
	// RandomFeasible repeatedly draws a uniformly random task from the
	// ready frontier (all predecessors placed), closing the open station
	// when the task would not fit.
	RandomFeasible Strategy = iota

	// BreadthFirst places tasks layer by layer in shuffled within-layer
	// order, opening a new station whenever the current one is full and
	// never revisiting an earlier one.
	BreadthFirst

	// CompactingBreadthFirst also works layer by layer, but retries every
	// station from a per-layer floor index before opening a new one,
	// packing layers tighter at the same feasibility.
	CompactingBreadthFirst

	// DepthFirst walks root-to-leaf paths in shuffled order, pulling in
	// unplaced predecessors on demand, so stations fill along dependency
	// chains rather than layers.
	DepthFirst
)

var strategyNames = map[Strategy]string{
	RandomFeasible:         "random-feasible",
	BreadthFirst:           "breadth-first",
	CompactingBreadthFirst: "compacting-breadth-first",
	DepthFirst:             "depth-first",
}

// String returns the strategy's canonical name.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Strategies returns all supported strategies in declaration order.
func Strategies() []Strategy {
	return []Strategy{RandomFeasible, BreadthFirst, CompactingBreadthFirst, DepthFirst}
}

// ParseStrategy resolves a canonical strategy name.
// Returns ErrUnknownStrategy for anything else.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Build constructs an initial feasible plan for the problem using the given
// strategy. The seed fully determines the outcome for a given problem.
//
// In type-2 mode no fixed cycle time exists; the heuristics then pack
// against the derived lower bound from [bounds.CycleTime] and never open
// more stations than the problem declares.
//
// Returns [precedence.ErrCycle] for cyclic precedence, ErrOversizedTask
// when a task exceeds a fixed cycle time, and ErrUnknownStrategy for an
// out-of-range strategy.
func Build(prob plan.Problem, seed uint64, strategy Strategy) (*plan.Plan, error) {
	p, err := plan.New(prob)
	if err != nil {
		return nil, err
	}
	if ct, ok := p.CycleTime(); ok {
		for _, t := range p.Tasks() {
			if t.Time() > ct {
				return nil, fmt.Errorf("%w: task %d needs %d, cycle time is %d",
					ErrOversizedTask, t.ID(), t.Time(), ct)
			}
		}
	}

	b := &builder{
		plan:     p,
		capacity: bounds.CycleTime(p),
		limit:    len(p.Stations()),
		loads:    make([]int, len(p.Stations())),
		placed:   make([]bool, len(p.Tasks())),
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x5a1b9))

	switch strategy {
	case RandomFeasible:
		err = b.random(rng)
	case BreadthFirst:
		err = b.breadthFirst(rng)
	case CompactingBreadthFirst:
		err = b.compacting(rng)
	case DepthFirst:
		err = b.depthFirst(rng)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", strategy, err)
	}

	if b.count != len(p.Tasks()) {
		return nil, fmt.Errorf("construct %s: %w", strategy, errIncomplete)
	}
	return p, nil
}

// builder tracks the open station and per-station loads while a heuristic
// fills the plan.
type builder struct {
	plan     *plan.Plan
	capacity int
	limit    int // declared station count; opening stops here
	current  int // highest station opened so far
	loads    []int
	placed   []bool
	count    int
}

// opened returns the number of stations opened so far.
func (b *builder) opened() int { return b.current + 1 }

// fits reports whether the task fits the station under the working capacity.
func (b *builder) fits(station int, t *plan.Task) bool {
	return b.loads[station]+t.Time() <= b.capacity
}

// open advances to a fresh station. In type-2 mode the declared station
// count caps the line; once reached, the last station absorbs the overflow
// (there is no hard capacity to violate in that mode).
func (b *builder) open() {
	if b.current+1 < b.limit {
		b.current++
	}
	// A type-1 plan declares one station per task, so the cap is never hit
	// there and capacity stays honored.
}

// placeAt assigns the task to the given station, rejecting double placement.
func (b *builder) placeAt(station int, t *plan.Task) error {
	if b.placed[t.ID()] {
		return fmt.Errorf("%w: task %d placed twice", errIncomplete, t.ID())
	}
	if err := b.plan.Assign(t.ID(), station); err != nil {
		return err
	}
	b.placed[t.ID()] = true
	b.loads[station] += t.Time()
	b.count++
	return nil
}

// place puts the task into the open station, closing it first if the task
// would not fit. Build has already rejected tasks larger than a fixed cycle
// time, so a fresh station always has room; in type-2 mode the derived
// capacity covers the longest task and the same holds.
func (b *builder) place(t *plan.Task) error {
	if !b.fits(b.current, t) && b.loads[b.current] > 0 {
		b.open()
	}
	return b.placeAt(b.current, t)
}

// shuffled returns a shuffled copy of ids.
func shuffled(rng *rand.Rand, ids []int) []int {
	out := slices.Clone(ids)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
