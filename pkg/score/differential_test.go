package score

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/linebalance/pkg/plan"
)

// randomProblem generates a random acyclic instance: each task may depend
// on tasks with smaller IDs, so the graph is acyclic by construction.
func randomProblem(rng *rand.Rand, tasks int, typeOne bool) plan.Problem {
	specs := make([]plan.TaskSpec, tasks)
	for i := range specs {
		specs[i] = plan.TaskSpec{ID: i, Time: 1 + rng.IntN(50)}
		for j := 0; j < i; j++ {
			if rng.Float64() < 0.2 {
				specs[i].Predecessors = append(specs[i].Predecessors, j)
			}
		}
	}

	prob := plan.Problem{Tasks: specs}
	if typeOne {
		prob.CycleTime = 30 + rng.IntN(100)
	} else {
		prob.Stations = 1 + rng.IntN(tasks)
	}
	return prob
}

// TestCrossCheckRandomized is the differential harness for the two score
// strategies: random instances, random partial assignments, random
// mutations - the reference and optimized evaluations must agree on every
// single plan state.
func TestCrossCheckRandomized(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := 0; trial < 50; trial++ {
		for _, typeOne := range []bool{true, false} {
			prob := randomProblem(rng, 2+rng.IntN(30), typeOne)
			p, err := plan.New(prob)
			if err != nil {
				t.Fatalf("trial %d: plan.New: %v", trial, err)
			}

			// Walk through a random assignment trajectory, checking at
			// every step: empty, partially assigned, fully mutated.
			if _, err := CrossCheck(p); err != nil {
				t.Fatalf("trial %d (empty): %v", trial, err)
			}
			for step := 0; step < 3*len(p.Tasks()); step++ {
				taskID := rng.IntN(len(p.Tasks()))
				if rng.Float64() < 0.1 {
					if err := p.Clear(taskID); err != nil {
						t.Fatalf("trial %d: Clear: %v", trial, err)
					}
				} else {
					station := rng.IntN(len(p.Stations()))
					if err := p.Assign(taskID, station); err != nil {
						t.Fatalf("trial %d: Assign: %v", trial, err)
					}
				}
				if _, err := CrossCheck(p); err != nil {
					t.Fatalf("trial %d step %d: %v", trial, step, err)
				}
			}
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 5))
	prob := randomProblem(rng, 200, true)
	p, err := plan.New(prob)
	if err != nil {
		b.Fatalf("plan.New: %v", err)
	}
	for _, t := range p.Tasks() {
		_ = p.Assign(t.ID(), rng.IntN(len(p.Stations())))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Evaluate(p)
	}
}

func BenchmarkReference(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 5))
	prob := randomProblem(rng, 200, true)
	p, err := plan.New(prob)
	if err != nil {
		b.Fatalf("plan.New: %v", err)
	}
	for _, t := range p.Tasks() {
		_ = p.Assign(t.ID(), rng.IntN(len(p.Stations())))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Reference(p)
	}
}
