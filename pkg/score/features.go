package score

import "github.com/matzehuels/linebalance/pkg/plan"

// Features holds every scoring feature of an assignment, each computed
// independently. This is the reference form of the score engine: slower
// than [Evaluate] but trivially auditable feature by feature, and the
// yardstick the optimized form is checked against.
//
// Only pairs where both tasks are assigned, and only assigned tasks, enter
// any feature; a plan with zero assigned tasks measures as all zeros.
type Features struct {
	// DirectInversions counts immediate-predecessor pairs where the task
	// sits on an earlier station than its predecessor. Sharing a station is
	// allowed (non-strict precedence).
	DirectInversions int64

	// StrictInversions additionally counts pairs sharing a station, for the
	// strict reading of precedence.
	StrictInversions int64

	// DeepInversions counts the same condition as DirectInversions over
	// transitive predecessors.
	DeepInversions int64

	// DependencyDistance sums, over directly inverted pairs, the gap in
	// station numbers between predecessor and task.
	DependencyDistance int64

	// Violations counts stations whose load exceeds the fixed cycle time.
	// Always zero in type-2 mode, where no fixed cycle time exists.
	Violations int64

	// Excess sums the load above the fixed cycle time across all violating
	// stations. Always zero in type-2 mode.
	Excess int64

	// UsedStations counts stations with at least one task assigned.
	UsedStations int64

	// Span is the inclusive distance from the lowest to the highest used
	// station number; empty stations inside the range count toward it.
	// Zero when nothing is assigned.
	Span int64

	// MaxLoad is the largest per-station load, the effective cycle time of
	// the assignment.
	MaxLoad int64

	// SquaredLoads sums the square of every station load, a smoothness
	// measure: for a fixed used-station count, lower means more even.
	SquaredLoads int64
}

// Measure computes every feature of the plan independently.
func Measure(p *plan.Plan) Features {
	var f Features

	for _, t := range p.Tasks() {
		st := t.Station()
		if st == nil {
			continue
		}
		for _, predID := range t.Predecessors() {
			ps := p.Task(predID).Station()
			if ps == nil {
				continue
			}
			if st.Number() < ps.Number() {
				f.DirectInversions++
				f.DependencyDistance += int64(ps.Number() - st.Number())
			}
			if st.Number() <= ps.Number() {
				f.StrictInversions++
			}
		}
		for _, predID := range t.DeepPredecessors() {
			ps := p.Task(predID).Station()
			if ps != nil && st.Number() < ps.Number() {
				f.DeepInversions++
			}
		}
	}

	cycle, fixed := p.CycleTime()
	minUsed, maxUsed := -1, -1
	for number, load := range p.Loads() {
		if load == 0 {
			continue
		}
		f.UsedStations++
		f.SquaredLoads += int64(load) * int64(load)
		if int64(load) > f.MaxLoad {
			f.MaxLoad = int64(load)
		}
		if fixed && load > cycle {
			f.Violations++
			f.Excess += int64(load - cycle)
		}
		if minUsed < 0 {
			minUsed = number
		}
		maxUsed = number
	}
	if minUsed >= 0 {
		f.Span = int64(maxUsed-minUsed) + 1
	}

	return f
}

// Score combines the features into the objective triple for the given mode.
//
// Type 1 (fixed cycle time): hard penalizes inversions and capacity
// violations, medium penalizes the used-station count, and soft rewards
// concentrated loads - maximizing the squared-load sum empties stations and
// indirectly serves the station-count objective.
//
// Type 2 (fixed station count): hard penalizes inversions, medium penalizes
// the effective cycle time, and soft penalizes uneven loads.
func (f Features) Score(typeOne bool) Score {
	if typeOne {
		return Score{
			Hard:   -(f.DirectInversions + f.Violations),
			Medium: -f.UsedStations,
			Soft:   f.SquaredLoads,
		}
	}
	return Score{
		Hard:   -f.DirectInversions,
		Medium: -f.MaxLoad,
		Soft:   -f.SquaredLoads,
	}
}

// Reference evaluates the plan feature by feature. It always returns the
// same triple as [Evaluate]; see [CrossCheck].
func Reference(p *plan.Plan) Score {
	_, fixed := p.CycleTime()
	return Measure(p).Score(fixed)
}
