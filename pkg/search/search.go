// Package search provides the adapters an external search driver consumes:
// a bounds-based feasibility filter for candidate moves, a station distance
// metric for locality-biased neighborhoods, and value-ordering priorities
// that schedule "harder" tasks first.
//
// The package defines primitives only; the driver that proposes moves,
// decides acceptance, and manages termination lives outside this module.
package search

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/matzehuels/linebalance/pkg/bounds"
	"github.com/matzehuels/linebalance/pkg/plan"
)

// Accept reports whether moving the task to the candidate station stays
// within the task's precomputed feasible interval. Tasks missing from the
// interval map are rejected outright; a missing entry means the bounds were
// computed for a different task set.
func Accept(intervals map[int]bounds.Interval, t *plan.Task, s *plan.Station) bool {
	iv, ok := intervals[t.ID()]
	return ok && iv.Contains(s.Number())
}

// Distance returns the absolute gap between the task's current station and
// the candidate station. An unassigned task is treated as sitting at
// station 0, so candidates near the front of the line rank closest.
func Distance(t *plan.Task, s *plan.Station) int {
	current := 0
	if st := t.Station(); st != nil {
		current = st.Number()
	}
	if d := current - s.Number(); d < 0 {
		return -d
	}
	return current - s.Number()
}

// ErrUnknownOrdering is returned by [NewPrioritizer] for an ordering value
// outside the declared set.
var ErrUnknownOrdering = errors.New("unknown priority ordering")

// Ordering names a value-ordering strategy. All orderings schedule lower
// topological layers first and break the final tie by task ID ascending;
// they differ in the signals between. ByLayerDuration is the default, the
// others are documented experimental alternatives.
type Ordering int

const (
	// ByLayerDuration orders by layer ascending, then processing time
	// descending: within a layer the heaviest work schedules first.
	ByLayerDuration Ordering = iota

	// ByLayerDurationSuccessors additionally prefers tasks with more
	// transitive successors, pulling long dependency chains forward.
	ByLayerDurationSuccessors

	// ByLayerDurationPredecessors additionally prefers tasks with fewer
	// immediate predecessors, the least-constrained-first variant.
	ByLayerDurationPredecessors
)

// String returns the ordering's canonical name.
func (o Ordering) String() string {
	switch o {
	case ByLayerDuration:
		return "layer-duration"
	case ByLayerDurationSuccessors:
		return "layer-duration-successors"
	case ByLayerDurationPredecessors:
		return "layer-duration-predecessors"
	}
	return fmt.Sprintf("Ordering(%d)", int(o))
}

// Prioritizer assigns value-ordering priorities to a plan's tasks. The
// layer map is computed once at construction; build one Prioritizer per
// solving run and reuse it across queries.
type Prioritizer struct {
	ordering Ordering
	layers   map[int]int
}

// NewPrioritizer builds a prioritizer for the plan using the given
// ordering. Returns [precedence.ErrCycle] if the plan's graph is cyclic and
// ErrUnknownOrdering for an out-of-range ordering.
func NewPrioritizer(p *plan.Plan, ordering Ordering) (*Prioritizer, error) {
	switch ordering {
	case ByLayerDuration, ByLayerDurationSuccessors, ByLayerDurationPredecessors:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOrdering, int(ordering))
	}

	layers, err := p.Graph().LayerMap()
	if err != nil {
		return nil, err
	}
	return &Prioritizer{ordering: ordering, layers: layers}, nil
}

// Compare orders two tasks under the prioritizer's ordering: negative when
// a schedules before b, zero never (the ID tie-break is total).
func (pr *Prioritizer) Compare(a, b *plan.Task) int {
	if c := cmp.Compare(pr.layers[a.ID()], pr.layers[b.ID()]); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Time(), a.Time()); c != 0 {
		return c
	}
	switch pr.ordering {
	case ByLayerDurationSuccessors:
		if c := cmp.Compare(len(b.DeepSuccessors()), len(a.DeepSuccessors())); c != 0 {
			return c
		}
	case ByLayerDurationPredecessors:
		if c := cmp.Compare(len(a.Predecessors()), len(b.Predecessors())); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID(), b.ID())
}

// Bit widths of the priority fields. Layer, inverted duration, and ID each
// get 21 bits of a non-negative int64, so ascending numeric order equals
// the default ordering's sort order.
const (
	fieldBits = 21
	fieldMax  = 1<<fieldBits - 1
)

// Priority encodes the default ordering as a single integer weight: tasks
// in lower layers sort first, heavier tasks first within a layer, ties by
// ID ascending. Smaller values schedule earlier. Durations above 2^21-1
// saturate, which can only blur ordering between equally enormous tasks.
func (pr *Prioritizer) Priority(t *plan.Task) int64 {
	layer := int64(min(pr.layers[t.ID()], fieldMax))
	duration := int64(min(t.Time(), fieldMax))
	id := int64(min(t.ID(), fieldMax))
	return layer<<(2*fieldBits) | (fieldMax-duration)<<fieldBits | id
}
