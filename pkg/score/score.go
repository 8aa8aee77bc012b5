// Package score maps a candidate assignment to a comparable objective value.
//
// A [Score] is an ordered (hard, medium, soft) triple compared
// lexicographically: hard dominates medium, medium dominates soft. Hard = 0
// is required for feasibility; medium carries the primary minimization
// objective (stations used in type-1 mode, effective cycle time in type-2
// mode); soft is a tie-breaking signal only.
//
// Two evaluation strategies are provided and must always agree:
// [Reference] computes every scoring feature independently via [Measure] and
// combines them, while [Evaluate] accumulates the triple in a single pass
// over tasks and stations. [CrossCheck] runs both and reports
// [ErrInconsistent] on any disagreement; the differential tests in this
// package exercise it across randomized plans.
//
// Infeasible plans are not errors: precedence inversions, overloaded
// stations, and unassigned tasks are expected during search and simply
// surface as score components (unassigned tasks contribute nothing).
package score

import "fmt"

// Score is a layered objective value. Larger is better in every component;
// penalties are therefore negative.
type Score struct {
	Hard   int64
	Medium int64
	Soft   int64
}

// Compare orders scores lexicographically: hard first, then medium, then
// soft. It returns -1 if s is worse than o, 0 if equal, +1 if better.
func (s Score) Compare(o Score) int {
	switch {
	case s.Hard != o.Hard:
		return cmp64(s.Hard, o.Hard)
	case s.Medium != o.Medium:
		return cmp64(s.Medium, o.Medium)
	default:
		return cmp64(s.Soft, o.Soft)
	}
}

// Better reports whether s is strictly better than o.
func (s Score) Better(o Score) bool { return s.Compare(o) > 0 }

// Feasible reports whether the hard component is zero, i.e. the plan
// violates no precedence constraint and (type 1) no station capacity.
func (s Score) Feasible() bool { return s.Hard == 0 }

// String renders the triple as "hard/medium/soft".
func (s Score) String() string {
	return fmt.Sprintf("%d/%d/%d", s.Hard, s.Medium, s.Soft)
}

func cmp64(a, b int64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
