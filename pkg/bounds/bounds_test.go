package bounds

import (
	"errors"
	"testing"

	"github.com/matzehuels/linebalance/pkg/plan"
)

func referenceProblem() plan.Problem {
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
		CycleTime: 42,
	}
}

func mustPlan(t *testing.T, prob plan.Problem) *plan.Plan {
	t.Helper()
	p, err := plan.New(prob)
	if err != nil {
		t.Fatalf("plan.New: %v", err)
	}
	return p
}

func TestSingleTask(t *testing.T) {
	p := mustPlan(t, plan.Problem{
		Tasks:     []plan.TaskSpec{{ID: 0, Time: 123}},
		CycleTime: 1000,
	})
	task := p.Task(0)

	if got := Earliest(task, 1000); got != 0 {
		t.Errorf("Earliest = %d, want 0", got)
	}
	if got := Latest(task, 1000, p.TotalTime(), 1.0); got != 0 {
		t.Errorf("Latest = %d, want 0", got)
	}
}

func TestEarliest(t *testing.T) {
	p := mustPlan(t, referenceProblem())
	tests := []struct {
		task int
		want int
	}{
		{0, 0},  // 10/42
		{2, 0},  // (12+21)/42
		{6, 1},  // (16+50)/42
		{9, 3},  // (19+126)/42
	}

	for _, tt := range tests {
		if got := Earliest(p.Task(tt.task), 42); got != tt.want {
			t.Errorf("Earliest(%d) = %d, want %d", tt.task, got, tt.want)
		}
	}
}

func TestLatest(t *testing.T) {
	p := mustPlan(t, referenceProblem())
	total := p.TotalTime() // 145

	tests := []struct {
		task   int
		margin float64
		want   int
	}{
		// Root: all 145 units remain, which needs every one of the
		// ceil(145/42) = 4 stations, pinning the root to station 0.
		{0, 1.0, 0},
		// Sink: only its own 19 remain, one station from the end of the
		// 4-station line.
		{9, 1.0, 3},
		// Margin 1.5 assumes a 6-station line, relaxing both bounds.
		{0, 1.5, 2},
		{9, 1.5, 5},
	}

	for _, tt := range tests {
		if got := Latest(p.Task(tt.task), 42, total, tt.margin); got != tt.want {
			t.Errorf("Latest(%d, margin %v) = %d, want %d", tt.task, tt.margin, got, tt.want)
		}
	}
}

func TestCycleTime(t *testing.T) {
	t.Run("Fixed", func(t *testing.T) {
		p := mustPlan(t, referenceProblem())
		if got := CycleTime(p); got != 42 {
			t.Errorf("CycleTime = %d, want 42", got)
		}
	})

	t.Run("DerivedAverage", func(t *testing.T) {
		prob := referenceProblem()
		prob.CycleTime = 0
		prob.Stations = 6
		p := mustPlan(t, prob)
		// ceil(145/6) = 25 beats the longest task (19).
		if got := CycleTime(p); got != 25 {
			t.Errorf("CycleTime = %d, want 25", got)
		}
	})

	t.Run("DerivedLongestTask", func(t *testing.T) {
		p := mustPlan(t, plan.Problem{
			Tasks: []plan.TaskSpec{
				{ID: 0, Time: 30},
				{ID: 1, Time: 2},
				{ID: 2, Time: 2},
			},
			Stations: 3,
		})
		// Average is ceil(34/3) = 12, but no station can beat task 0.
		if got := CycleTime(p); got != 30 {
			t.Errorf("CycleTime = %d, want 30", got)
		}
	})
}

func TestCompute(t *testing.T) {
	p := mustPlan(t, referenceProblem())

	intervals, err := Compute(p, 1.0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(intervals) != 10 {
		t.Fatalf("interval count = %d, want 10", len(intervals))
	}

	for id, iv := range intervals {
		if iv.Min > iv.Max {
			t.Errorf("task %d: empty interval [%d, %d]", id, iv.Min, iv.Max)
		}
	}
	if iv := intervals[9]; iv.Min != 3 || iv.Max != 3 {
		t.Errorf("interval(9) = [%d, %d], want [3, 3]", iv.Min, iv.Max)
	}
}

func TestComputeMargin(t *testing.T) {
	p := mustPlan(t, referenceProblem())
	if _, err := Compute(p, 0.9); !errors.Is(err, ErrMargin) {
		t.Fatalf("Compute(margin 0.9) = %v, want ErrMargin", err)
	}
}

func TestIntervalContains(t *testing.T) {
	iv := Interval{Min: 2, Max: 5}
	for station, want := range map[int]bool{1: false, 2: true, 4: true, 5: true, 6: false} {
		if got := iv.Contains(station); got != want {
			t.Errorf("Contains(%d) = %v, want %v", station, got, want)
		}
	}
}
