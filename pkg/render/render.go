// Package render turns balancing plans into visual outputs.
//
// Plans are first converted to Graphviz DOT with [ToDOT]: tasks become boxes,
// precedence edges become arrows, and stations become clusters grouping their
// assigned tasks. The DOT text can then be rendered to SVG with [SVG].
//
//	dot := render.ToDOT(p, render.Options{Detailed: true})
//	svg, err := render.SVG(dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/linebalance/pkg/plan"
)

// Options configures plan rendering.
type Options struct {
	// Detailed includes task times and station loads in labels.
	// When false, only IDs are shown.
	Detailed bool
}

// ToDOT converts a plan to Graphviz DOT format.
// Assigned tasks are grouped into one cluster per used station, ordered by
// station number; unassigned tasks sit outside any cluster with dashed
// outlines. Edges point from each task's immediate predecessors to the task.
func ToDOT(p *plan.Plan, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	byStation := make(map[int][]*plan.Task)
	var loose []*plan.Task
	for _, t := range p.Tasks() {
		if s := t.Station(); s != nil {
			byStation[s.Number()] = append(byStation[s.Number()], t)
		} else {
			loose = append(loose, t)
		}
	}

	for _, number := range slices.Sorted(maps.Keys(byStation)) {
		tasks := byStation[number]
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", number)
		fmt.Fprintf(&buf, "    label=%q;\n", stationLabel(number, tasks, opts.Detailed))
		buf.WriteString("    style=rounded;\n")
		buf.WriteString("    color=grey;\n")
		for _, t := range sortByID(tasks) {
			fmt.Fprintf(&buf, "    %d [label=%q];\n", t.ID(), taskLabel(t, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	for _, t := range sortByID(loose) {
		fmt.Fprintf(&buf, "  %d [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n",
			t.ID(), taskLabel(t, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, t := range p.Tasks() {
		for _, pred := range t.Predecessors() {
			fmt.Fprintf(&buf, "  %d -> %d;\n", pred, t.ID())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func sortByID(tasks []*plan.Task) []*plan.Task {
	out := slices.Clone(tasks)
	slices.SortFunc(out, func(a, b *plan.Task) int { return a.ID() - b.ID() })
	return out
}

func taskLabel(t *plan.Task, detailed bool) string {
	if !detailed {
		return strconv.Itoa(t.ID())
	}
	return fmt.Sprintf("%d\nt=%d", t.ID(), t.Time())
}

func stationLabel(number int, tasks []*plan.Task, detailed bool) string {
	if !detailed {
		return fmt.Sprintf("station %d", number)
	}
	load := 0
	for _, t := range tasks {
		load += t.Time()
	}
	return fmt.Sprintf("station %d (load %d)", number, load)
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
