// Package instance reads and writes problem instances as JSON.
//
// An instance carries the already-parsed inputs the core consumes: task
// count, per-task processing times, immediate-predecessor IDs, and either a
// cycle time (type 1) or a station count (type 2), all with zero-based
// contiguous task IDs. No other wire format is defined; richer loaders
// should convert into this form.
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/linebalance/pkg/plan"
)

// Task is the serialized form of one task.
type Task struct {
	ID           int   `json:"id"`
	Time         int   `json:"time"`
	Predecessors []int `json:"predecessors,omitempty"`
}

// Instance is the serialized form of a problem. Exactly one of CycleTime
// (type 1) or Stations (type 2) must be positive.
type Instance struct {
	Tasks     []Task `json:"tasks"`
	CycleTime int    `json:"cycle_time,omitempty"`
	Stations  int    `json:"stations,omitempty"`
}

// Problem converts the instance into the in-memory problem form, validating
// IDs, times, and mode along the way.
func (in Instance) Problem() (plan.Problem, error) {
	specs := make([]plan.TaskSpec, len(in.Tasks))
	for i, t := range in.Tasks {
		specs[i] = plan.TaskSpec{ID: t.ID, Time: t.Time, Predecessors: t.Predecessors}
	}
	p := plan.Problem{Tasks: specs, CycleTime: in.CycleTime, Stations: in.Stations}
	if err := p.Validate(); err != nil {
		return plan.Problem{}, err
	}
	return p, nil
}

// FromProblem converts an in-memory problem back into serializable form.
func FromProblem(p plan.Problem) Instance {
	tasks := make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		tasks[i] = Task{ID: t.ID, Time: t.Time, Predecessors: t.Predecessors}
	}
	return Instance{Tasks: tasks, CycleTime: p.CycleTime, Stations: p.Stations}
}

// Marshal converts a problem to indented JSON bytes.
func Marshal(p plan.Problem) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a problem as JSON to w.
func Write(p plan.Problem, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromProblem(p)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a problem to a JSON file with 0644 permissions.
func WriteFile(p plan.Problem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(p, f)
}

// Read decodes and validates a JSON instance from r.
func Read(r io.Reader) (plan.Problem, error) {
	var in Instance
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return plan.Problem{}, fmt.Errorf("decode: %w", err)
	}
	return in.Problem()
}

// ReadFile reads and validates a JSON instance file.
func ReadFile(path string) (plan.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return plan.Problem{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
