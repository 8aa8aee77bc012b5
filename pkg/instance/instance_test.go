package instance

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/linebalance/pkg/plan"
)

func TestRoundTrip(t *testing.T) {
	prob := plan.Problem{
		Tasks: []plan.TaskSpec{
			{ID: 0, Time: 10},
			{ID: 1, Time: 11},
			{ID: 2, Time: 12, Predecessors: []int{0, 1}},
		},
		CycleTime: 42,
	}

	data, err := Marshal(prob)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got.Tasks) != 3 || got.CycleTime != 42 || got.Stations != 0 {
		t.Errorf("round trip = %+v, want %+v", got, prob)
	}
	if got.Tasks[2].Time != 12 || len(got.Tasks[2].Predecessors) != 2 {
		t.Errorf("task 2 = %+v, want time 12 with 2 predecessors", got.Tasks[2])
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{
			name: "TypeOne",
			json: `{"tasks":[{"id":0,"time":5}],"cycle_time":10}`,
		},
		{
			name: "TypeTwo",
			json: `{"tasks":[{"id":0,"time":5},{"id":1,"time":3,"predecessors":[0]}],"stations":2}`,
		},
		{
			name:    "NoMode",
			json:    `{"tasks":[{"id":0,"time":5}]}`,
			wantErr: plan.ErrMode,
		},
		{
			name:    "BadTime",
			json:    `{"tasks":[{"id":0,"time":0}],"cycle_time":10}`,
			wantErr: plan.ErrTaskTime,
		},
		{
			name:    "GappyIDs",
			json:    `{"tasks":[{"id":0,"time":5},{"id":5,"time":3}],"cycle_time":10}`,
			wantErr: plan.ErrTaskID,
		},
		{
			name:    "Empty",
			json:    `{}`,
			wantErr: plan.ErrNoTasks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.json))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Read = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader("not json")); err == nil {
		t.Fatal("Read(malformed) = nil, want decode error")
	}
}
