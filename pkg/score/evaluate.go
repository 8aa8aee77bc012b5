package score

import (
	"errors"
	"fmt"

	"github.com/matzehuels/linebalance/pkg/plan"
)

// ErrInconsistent is returned by [CrossCheck] when the reference and
// optimized evaluations disagree. This always indicates a logic defect in
// one of the two strategies and is never recovered from silently.
var ErrInconsistent = errors.New("reference and optimized scores disagree")

// Evaluate computes the plan's score in a single pass over tasks and their
// immediate predecessors, without materializing the intermediate features.
// This is the evaluation the search driver calls after every candidate move,
// so it avoids the transitive sets and per-feature bookkeeping of [Measure].
//
// Evaluate is side-effect-free and returns identical results for an
// unchanged plan.
func Evaluate(p *plan.Plan) Score {
	cycle, fixed := p.CycleTime()
	loads := make([]int, len(p.Stations()))

	var inversions int64
	for _, t := range p.Tasks() {
		st := t.Station()
		if st == nil {
			continue
		}
		loads[st.Number()] += t.Time()
		for _, predID := range t.Predecessors() {
			if ps := p.Task(predID).Station(); ps != nil && st.Number() < ps.Number() {
				inversions++
			}
		}
	}

	var used, violations, maxLoad, squared int64
	for _, load := range loads {
		if load == 0 {
			continue
		}
		used++
		squared += int64(load) * int64(load)
		if int64(load) > maxLoad {
			maxLoad = int64(load)
		}
		if fixed && load > cycle {
			violations++
		}
	}

	if fixed {
		return Score{Hard: -(inversions + violations), Medium: -used, Soft: squared}
	}
	return Score{Hard: -inversions, Medium: -maxLoad, Soft: -squared}
}

// CrossCheck evaluates the plan with both strategies and returns the score
// if they agree, or [ErrInconsistent] describing both triples if they do
// not. It backs the differential tests in this package and is cheap enough
// for debug tooling, but is not meant for the hot evaluation path.
func CrossCheck(p *plan.Plan) (Score, error) {
	ref := Reference(p)
	opt := Evaluate(p)
	if ref != opt {
		return Score{}, fmt.Errorf("%w: reference %v, optimized %v", ErrInconsistent, ref, opt)
	}
	return opt, nil
}
