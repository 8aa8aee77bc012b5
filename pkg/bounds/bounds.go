// Package bounds computes, for each task, the tightest feasible interval of
// station numbers it could occupy given the cycle time and the precedence
// graph. The intervals are used by the search adapters to prune candidate
// moves before they are evaluated.
//
// Computing the intervals walks every task once; callers are expected to
// compute them once per solving run (the task set and cycle time are fixed
// for a run) and reuse the result for every move check.
package bounds

import (
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/linebalance/pkg/plan"
)

// DefaultMargin is the default relaxation factor for the latest-station
// bound. Values above 1.0 widen the interval, trading a larger search
// neighborhood for a lower risk of excluding a feasible station.
const DefaultMargin = 1.5

// ErrMargin is returned when the margin factor is below 1.0. A factor below
// one would tighten the bound past its justification and can cut off
// feasible stations.
var ErrMargin = errors.New("margin factor must be at least 1.0")

// Interval is an inclusive range of feasible station numbers for one task.
type Interval struct {
	Min int // earliest feasible station number
	Max int // latest feasible station number
}

// Contains reports whether the station number lies within the interval.
func (iv Interval) Contains(station int) bool {
	return station >= iv.Min && station <= iv.Max
}

// Earliest returns the earliest station the task could feasibly occupy:
// even with zero waste, the task's own time plus all transitive predecessor
// time must be packed before the task can complete, which pins it to station
// floor(work / cycleTime) at best.
func Earliest(t *plan.Task, cycleTime int) int {
	return (t.Time() + t.DeepPredecessorTime()) / cycleTime
}

// Latest returns the latest station the task could feasibly occupy, the
// symmetric bound from the remaining-work side: everything that is not a
// transitive predecessor of the task (the task itself included) must fit
// into the stations from the task's own through the end of the line, which
// takes ceil(work / cycleTime) stations even at zero waste. Subtracting
// that from the line length gives the latest index.
//
// The line length is estimated as ceil(margin × totalTime / cycleTime);
// margin (≥ 1.0, see [DefaultMargin]) relaxes the bound by assuming a
// longer line, trading search-space size against the risk of excluding a
// feasible station.
//
// totalTime is the summed time of all tasks in the problem.
func Latest(t *plan.Task, cycleTime, totalTime int, margin float64) int {
	work := totalTime - t.DeepPredecessorTime()
	fromEnd := (work + cycleTime - 1) / cycleTime
	line := int(math.Ceil(margin * float64(totalTime) / float64(cycleTime)))
	return max(line-fromEnd, 0)
}

// CycleTime returns the plan's fixed cycle time in type-1 mode. In type-2
// mode it derives a lower bound instead: no station can run faster than the
// single longest task, and the average load across all stations bounds the
// worst station from below, so the maximum of the two is a valid lower
// bound. The average is taken with ceiling division to stay a true bound
// under integer times.
func CycleTime(p *plan.Plan) int {
	if ct, ok := p.CycleTime(); ok {
		return ct
	}

	stations := len(p.Stations())
	avg := (p.TotalTime() + stations - 1) / stations

	longest := 0
	for _, t := range p.Tasks() {
		if t.Time() > longest {
			longest = t.Time()
		}
	}
	return max(avg, longest)
}

// Compute returns the feasible station interval for every task of the plan,
// keyed by task ID. The cycle time is taken from the plan (fixed in type-1
// mode, derived via [CycleTime] in type-2 mode).
//
// Returns ErrMargin if margin < 1.0.
func Compute(p *plan.Plan, margin float64) (map[int]Interval, error) {
	if margin < 1.0 {
		return nil, fmt.Errorf("%w: got %v", ErrMargin, margin)
	}

	ct := CycleTime(p)
	total := p.TotalTime()

	intervals := make(map[int]Interval, len(p.Tasks()))
	for _, t := range p.Tasks() {
		intervals[t.ID()] = Interval{
			Min: Earliest(t, ct),
			Max: Latest(t, ct, total, margin),
		}
	}
	return intervals, nil
}
