package score

import (
	"testing"

	"github.com/matzehuels/linebalance/pkg/plan"
)

// referenceProblem is the shared ten-task fixture; see the precedence
// package tests for the graph shape.
func referenceProblem(cycleTime int) plan.Problem {
	return plan.Problem{
		Tasks: []plan.TaskSpec{
			{ID: 0, Time: 10},
			{ID: 1, Time: 11},
			{ID: 2, Time: 12, Predecessors: []int{0, 1}},
			{ID: 3, Time: 13, Predecessors: []int{2}},
			{ID: 4, Time: 14, Predecessors: []int{2}},
			{ID: 5, Time: 15, Predecessors: []int{2}},
			{ID: 6, Time: 16, Predecessors: []int{3, 4}},
			{ID: 7, Time: 17, Predecessors: []int{5}},
			{ID: 8, Time: 18, Predecessors: []int{7}},
			{ID: 9, Time: 19, Predecessors: []int{6, 8}},
		},
		CycleTime: cycleTime,
	}
}

// feasibleLayout is the six-station assignment [0,1 | 2 | 3,4,5 | 6,7 | 8 | 9]
// with station loads [21, 12, 42, 33, 18, 19].
var feasibleLayout = map[int]int{
	0: 0, 1: 0,
	2: 1,
	3: 2, 4: 2, 5: 2,
	6: 3, 7: 3,
	8: 4,
	9: 5,
}

func buildPlan(t *testing.T, prob plan.Problem, layout map[int]int) *plan.Plan {
	t.Helper()
	p, err := plan.New(prob)
	if err != nil {
		t.Fatalf("plan.New: %v", err)
	}
	for taskID, station := range layout {
		if err := p.Assign(taskID, station); err != nil {
			t.Fatalf("Assign(%d, %d): %v", taskID, station, err)
		}
	}
	return p
}

func TestMeasureFeasible(t *testing.T) {
	p := buildPlan(t, referenceProblem(42), feasibleLayout)
	f := Measure(p)

	want := Features{
		UsedStations: 6,
		Span:         6,
		MaxLoad:      42,
		SquaredLoads: 4123,
	}
	if f != want {
		t.Errorf("Measure = %+v, want %+v", f, want)
	}
}

func TestMeasureCycleViolations(t *testing.T) {
	tests := []struct {
		name           string
		cycleTime      int
		wantViolations int64
		wantExcess     int64
	}{
		{"AllStationsOver", 11, 6, 79},
		{"SomeStationsOver", 18, 4, 43},
		{"NoneOver", 42, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPlan(t, referenceProblem(tt.cycleTime), feasibleLayout)
			f := Measure(p)
			if f.Violations != tt.wantViolations {
				t.Errorf("Violations = %d, want %d", f.Violations, tt.wantViolations)
			}
			if f.Excess != tt.wantExcess {
				t.Errorf("Excess = %d, want %d", f.Excess, tt.wantExcess)
			}
		})
	}
}

func TestMeasureInversions(t *testing.T) {
	// Task 9 depends on 6 (station 3) and 8 (station 4); yanking it to
	// station 0 inverts both direct pairs and seven of its nine deep pairs
	// (0 and 1 share station 0, which the non-strict reading allows).
	p := buildPlan(t, referenceProblem(42), feasibleLayout)
	if err := p.Assign(9, 0); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	f := Measure(p)
	if f.DirectInversions != 2 {
		t.Errorf("DirectInversions = %d, want 2", f.DirectInversions)
	}
	if f.StrictInversions != 2 {
		t.Errorf("StrictInversions = %d, want 2", f.StrictInversions)
	}
	if f.DeepInversions != 7 {
		t.Errorf("DeepInversions = %d, want 7", f.DeepInversions)
	}
	if f.DependencyDistance != 7 {
		t.Errorf("DependencyDistance = %d, want 7", f.DependencyDistance)
	}
}

func TestMeasureStrictOnly(t *testing.T) {
	// Predecessor sharing a station: strict counts it, direct does not.
	p := buildPlan(t, referenceProblem(42), map[int]int{0: 0, 1: 0, 2: 0})
	f := Measure(p)
	if f.DirectInversions != 0 {
		t.Errorf("DirectInversions = %d, want 0", f.DirectInversions)
	}
	if f.StrictInversions != 2 {
		t.Errorf("StrictInversions = %d, want 2", f.StrictInversions)
	}
}

func TestMeasureSpanGap(t *testing.T) {
	// Stations 1 and 4 used: span counts the empty stations in between.
	p := buildPlan(t, referenceProblem(42), map[int]int{0: 1, 1: 4})
	f := Measure(p)
	if f.Span != 4 {
		t.Errorf("Span = %d, want 4", f.Span)
	}
	if f.UsedStations != 2 {
		t.Errorf("UsedStations = %d, want 2", f.UsedStations)
	}
}

func TestScoreTypeOne(t *testing.T) {
	p := buildPlan(t, referenceProblem(42), feasibleLayout)
	got := Evaluate(p)
	want := Score{Hard: 0, Medium: -6, Soft: 4123}
	if got != want {
		t.Errorf("Evaluate = %v, want %v", got, want)
	}
	if !got.Feasible() {
		t.Error("feasible layout scored infeasible")
	}
}

func TestScoreTypeOneInfeasible(t *testing.T) {
	p := buildPlan(t, referenceProblem(18), feasibleLayout)
	got := Evaluate(p)
	// Four stations exceed cycle time 18; stations and loads are unchanged.
	want := Score{Hard: -4, Medium: -6, Soft: 4123}
	if got != want {
		t.Errorf("Evaluate = %v, want %v", got, want)
	}
}

func TestScoreTypeTwo(t *testing.T) {
	prob := referenceProblem(0)
	prob.Stations = 6
	p := buildPlan(t, prob, feasibleLayout)

	got := Evaluate(p)
	want := Score{Hard: 0, Medium: -42, Soft: -4123}
	if got != want {
		t.Errorf("Evaluate = %v, want %v", got, want)
	}
}

func TestScoreEmpty(t *testing.T) {
	p := buildPlan(t, referenceProblem(42), nil)
	if got := Evaluate(p); got != (Score{}) {
		t.Errorf("Evaluate(empty) = %v, want 0/0/0", got)
	}
	if f := Measure(p); f != (Features{}) {
		t.Errorf("Measure(empty) = %+v, want zero", f)
	}
}

func TestScoreIdempotent(t *testing.T) {
	p := buildPlan(t, referenceProblem(42), feasibleLayout)
	first := Evaluate(p)
	if second := Evaluate(p); second != first {
		t.Errorf("second Evaluate = %v, want %v", second, first)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Score
		want int
	}{
		{"HardDominates", Score{Hard: 0, Medium: -99, Soft: -99}, Score{Hard: -1, Medium: 0, Soft: 0}, 1},
		{"MediumDominatesSoft", Score{Medium: -5, Soft: 100}, Score{Medium: -4, Soft: 0}, -1},
		{"SoftBreaksTie", Score{Soft: 2}, Score{Soft: 1}, 1},
		{"Equal", Score{Hard: -1, Medium: -2, Soft: -3}, Score{Hard: -1, Medium: -2, Soft: -3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
			if got := tt.a.Better(tt.b); got != (tt.want > 0) {
				t.Errorf("Better = %v, want %v", got, tt.want > 0)
			}
		})
	}
}
