package cli

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"dot", []string{"dot"}},
		{"dot,svg,json", []string{"dot", "svg", "json"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatLoads(t *testing.T) {
	if got := formatLoads([]int{21, 12, 0, 0}); got != "[21 12]" {
		t.Errorf("formatLoads = %q, want [21 12]", got)
	}
	if got := formatLoads(nil); got != "[]" {
		t.Errorf("formatLoads(nil) = %q, want []", got)
	}
}

func TestFormatIDs(t *testing.T) {
	if got := formatIDs([]int{0, 2, 5}); got != "0 2 5" {
		t.Errorf("formatIDs = %q, want \"0 2 5\"", got)
	}
}

func TestStrategyNames(t *testing.T) {
	names := strategyNames()
	for _, want := range []string{"random-feasible", "breadth-first", "compacting-breadth-first", "depth-first"} {
		if !strings.Contains(names, want) {
			t.Errorf("strategyNames() = %q, missing %q", names, want)
		}
	}
}
