// Package plan defines the data model for assembly line balancing: tasks
// with processing times and precedence constraints, stations forming an
// ordered assembly sequence, and the Plan aggregate that ties the two
// together with an optional fixed cycle time.
//
// A Plan operates in one of two modes:
//
//   - Type 1: the cycle time is fixed and the objective is to minimize the
//     number of stations actually used.
//   - Type 2: the station count is fixed and the objective is to minimize the
//     maximum per-station load (the effective cycle time).
//
// Structure (tasks, stations, precedence) is immutable after construction;
// only the task → station assignment mutates. Plans never share mutable
// state: [Plan.Clone] produces a fully independent copy, so distinct plans
// can be evaluated concurrently.
package plan

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/linebalance/pkg/precedence"
)

var (
	// ErrNoTasks is returned by [New] when the problem declares no tasks.
	ErrNoTasks = errors.New("problem has no tasks")

	// ErrTaskID is returned by [Problem.Validate] when task IDs are not
	// contiguous starting at zero, or a predecessor references an unknown ID.
	ErrTaskID = errors.New("task IDs must be contiguous from zero")

	// ErrTaskTime is returned by [Problem.Validate] when a task has a
	// non-positive processing time.
	ErrTaskTime = errors.New("task time must be positive")

	// ErrMode is returned by [Problem.Validate] when neither a cycle time
	// (type 1) nor a station count (type 2) is given, or both are.
	ErrMode = errors.New("exactly one of cycle time or station count must be set")

	// ErrUnknownTask is returned by [Plan.Assign] and [Plan.Clear] for task
	// IDs outside the plan's task set.
	ErrUnknownTask = errors.New("unknown task")

	// ErrUnknownStation is returned by [Plan.Assign] when the target station
	// number is not one of the plan's declared stations.
	ErrUnknownStation = errors.New("unknown station")
)

// TaskSpec describes one task of a problem instance: its ID, processing
// time, and the IDs of its immediate predecessors.
type TaskSpec struct {
	ID           int
	Time         int
	Predecessors []int
}

// Problem is an already-parsed problem instance. Task IDs must be
// zero-based and contiguous. Exactly one of CycleTime (type 1) or Stations
// (type 2) must be positive.
type Problem struct {
	Tasks     []TaskSpec
	CycleTime int // fixed cycle time; > 0 selects type-1 mode
	Stations  int // fixed station count; > 0 selects type-2 mode
}

// Validate checks structural integrity: contiguous zero-based IDs, positive
// times, known predecessor references, and a well-defined mode. It does not
// check acyclicity; [New] does, via the precedence utilities.
func (p Problem) Validate() error {
	if len(p.Tasks) == 0 {
		return ErrNoTasks
	}
	if (p.CycleTime > 0) == (p.Stations > 0) {
		return ErrMode
	}

	seen := make([]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.ID < 0 || t.ID >= len(p.Tasks) || seen[t.ID] {
			return fmt.Errorf("%w: got %d", ErrTaskID, t.ID)
		}
		seen[t.ID] = true
		if t.Time <= 0 {
			return fmt.Errorf("%w: task %d has time %d", ErrTaskTime, t.ID, t.Time)
		}
		for _, pre := range t.Predecessors {
			if pre < 0 || pre >= len(p.Tasks) {
				return fmt.Errorf("%w: task %d references predecessor %d", ErrTaskID, t.ID, pre)
			}
		}
	}
	return nil
}

// Graph returns the problem's immediate-predecessor graph.
func (p Problem) Graph() precedence.Graph {
	preds := make(map[int][]int, len(p.Tasks))
	for _, t := range p.Tasks {
		preds[t.ID] = t.Predecessors
	}
	return precedence.Build(preds)
}

// TotalTime returns the summed processing time of all tasks.
func (p Problem) TotalTime() int {
	total := 0
	for _, t := range p.Tasks {
		total += t.Time
	}
	return total
}

// Task is an atomic unit of work. Structure fields (ID, Time, predecessor
// sets) are fixed at plan construction; only the station assignment mutates,
// and only through [Plan.Assign] and [Plan.Clear].
type Task struct {
	id   int
	time int

	predecessors []int // immediate predecessor IDs, sorted
	deepPreds    []int // transitive predecessor IDs, sorted
	deepSuccs    []int // transitive successor IDs, sorted
	deepPredTime int   // summed time of all transitive predecessors

	station *Station // nil while unassigned
}

// ID returns the task's unique zero-based identifier.
func (t *Task) ID() int { return t.id }

// Time returns the task's processing time.
func (t *Task) Time() int { return t.time }

// Predecessors returns the IDs of the task's immediate predecessors, sorted
// ascending. The returned slice is a read-only view.
func (t *Task) Predecessors() []int { return t.predecessors }

// DeepPredecessors returns the IDs of all transitive predecessors, sorted
// ascending. The set is computed once at plan construction and cached.
func (t *Task) DeepPredecessors() []int { return t.deepPreds }

// DeepSuccessors returns the IDs of all transitive successors, sorted
// ascending. The set is computed once at plan construction and cached.
func (t *Task) DeepSuccessors() []int { return t.deepSuccs }

// DeepPredecessorTime returns the summed processing time of all transitive
// predecessors.
func (t *Task) DeepPredecessorTime() int { return t.deepPredTime }

// Station returns the station the task is assigned to, or nil while the
// task is unassigned. The pointer is a non-owning link into the same plan's
// station set.
func (t *Task) Station() *Station { return t.station }

// Station is a position in the ordered assembly sequence. Stations are
// totally ordered by Number, 0..N-1 with no gaps in the declared set, though
// some may end up unused in a given assignment. A station has no intrinsic
// capacity; capacity is governed by the plan's cycle time.
type Station struct {
	number int
}

// Number returns the station's ordinal in the assembly sequence.
func (s *Station) Number() int { return s.number }

// Plan is an ordered set of stations, a set of tasks, and an optional fixed
// cycle time. It owns its tasks and stations: no Task or Station is ever
// shared between two Plan instances.
//
// A Plan does not enforce precedence or capacity on assignment - infeasible
// intermediate states are expected and normal during search, and are
// surfaced as nonzero score components by the score package.
type Plan struct {
	tasks    []*Task
	stations []*Station
	cycle    int // 0 in type-2 mode
	graph    precedence.Graph
}

// New builds an unassigned plan from a problem instance. In type-1 mode one
// station per task is declared (the worst case a feasible assignment can
// need); in type-2 mode the problem's fixed station count is declared.
//
// Transitive predecessor and successor sets are computed once here and
// cached on the tasks. Returns [precedence.ErrCycle] if the precedence
// relation is cyclic.
func New(p Problem) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	g := p.Graph()
	deepPreds, err := g.DeepPredecessors()
	if err != nil {
		return nil, err
	}
	deepSuccs, err := g.DeepSuccessors()
	if err != nil {
		return nil, err
	}

	times := make([]int, len(p.Tasks))
	for _, spec := range p.Tasks {
		times[spec.ID] = spec.Time
	}

	tasks := make([]*Task, len(p.Tasks))
	for _, spec := range p.Tasks {
		dp := deepPreds[spec.ID]
		predTime := 0
		for _, id := range dp {
			predTime += times[id]
		}
		tasks[spec.ID] = &Task{
			id:           spec.ID,
			time:         spec.Time,
			predecessors: slices.Sorted(slices.Values(spec.Predecessors)),
			deepPreds:    dp,
			deepSuccs:    deepSuccs[spec.ID],
			deepPredTime: predTime,
		}
	}

	count := p.Stations
	if p.CycleTime > 0 {
		count = len(p.Tasks)
	}
	stations := make([]*Station, count)
	for i := range stations {
		stations[i] = &Station{number: i}
	}

	return &Plan{tasks: tasks, stations: stations, cycle: p.CycleTime, graph: g}, nil
}

// Tasks returns all tasks ordered by ID. The returned slice is a read-only
// view; the task pointers are the plan's own.
func (p *Plan) Tasks() []*Task { return p.tasks }

// Task returns the task with the given ID, or nil if out of range.
func (p *Plan) Task(id int) *Task {
	if id < 0 || id >= len(p.tasks) {
		return nil
	}
	return p.tasks[id]
}

// Stations returns the declared stations ordered by number. The returned
// slice is a read-only view.
func (p *Plan) Stations() []*Station { return p.stations }

// Station returns the station with the given number and true, or nil and
// false if no such station is declared.
func (p *Plan) Station(number int) (*Station, bool) {
	if number < 0 || number >= len(p.stations) {
		return nil, false
	}
	return p.stations[number], true
}

// CycleTime returns the fixed cycle time and true in type-1 mode, or 0 and
// false in type-2 mode.
func (p *Plan) CycleTime() (int, bool) {
	return p.cycle, p.cycle > 0
}

// Graph returns the plan's immediate-predecessor graph.
func (p *Plan) Graph() precedence.Graph { return p.graph }

// TotalTime returns the summed processing time of all tasks.
func (p *Plan) TotalTime() int {
	total := 0
	for _, t := range p.tasks {
		total += t.time
	}
	return total
}

// Assign links a task to a declared station. Precedence and capacity are
// deliberately not checked here; violations become score components.
func (p *Plan) Assign(taskID, stationNumber int) error {
	t := p.Task(taskID)
	if t == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTask, taskID)
	}
	s, ok := p.Station(stationNumber)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStation, stationNumber)
	}
	t.station = s
	return nil
}

// Clear removes a task's station assignment.
func (p *Plan) Clear(taskID int) error {
	t := p.Task(taskID)
	if t == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTask, taskID)
	}
	t.station = nil
	return nil
}

// Loads returns the summed processing time per station, indexed by station
// number. Unassigned tasks contribute nothing.
func (p *Plan) Loads() []int {
	loads := make([]int, len(p.stations))
	for _, t := range p.tasks {
		if t.station != nil {
			loads[t.station.number] += t.time
		}
	}
	return loads
}

// Clone returns a fully independent copy of the plan: fresh Task and
// Station instances with the same structure and the same assignments.
// Mutating one copy never affects the other, so clones can be evaluated
// in parallel.
func (p *Plan) Clone() *Plan {
	clone := &Plan{
		tasks:    make([]*Task, len(p.tasks)),
		stations: make([]*Station, len(p.stations)),
		cycle:    p.cycle,
		graph:    p.graph,
	}
	for i, s := range p.stations {
		clone.stations[i] = &Station{number: s.number}
	}
	for i, t := range p.tasks {
		ct := *t
		if t.station != nil {
			ct.station = clone.stations[t.station.number]
		}
		clone.tasks[i] = &ct
	}
	return clone
}
