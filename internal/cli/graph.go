package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linebalance/pkg/instance"
	"github.com/matzehuels/linebalance/pkg/plan"
	"github.com/matzehuels/linebalance/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output string // DOT output path (stdout if empty)
	dot    bool   // emit DOT instead of the text summary
}

// newGraphCmd creates the graph command.
// It inspects the precedence graph of an instance: topological order, layers,
// and an optional DOT rendering of the unassigned plan.
func newGraphCmd() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <instance.json>",
		Short: "Inspect the precedence graph of an instance",
		Long: `Print the topological order and layer structure of an instance's
precedence graph, or emit it as Graphviz DOT with --dot.

Examples:
  linebalance graph line.json
  linebalance graph line.json --dot -o line.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGraph(&opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.dot, "dot", false, "emit Graphviz DOT")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runGraph(opts *graphOpts, path string) error {
	prob, err := instance.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}
	p, err := plan.New(prob)
	if err != nil {
		return err
	}

	if opts.dot {
		out, err := openOutput(opts.output)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = out.Write([]byte(render.ToDOT(p, render.Options{Detailed: true})))
		return err
	}

	graph := p.Graph()

	order, err := graph.TopologicalOrder()
	if err != nil {
		return err
	}
	printKeyValue("tasks", fmt.Sprintf("%d", len(order)))
	printKeyValue("total time", fmt.Sprintf("%d", p.TotalTime()))
	printKeyValue("order", formatIDs(order))

	layers, err := graph.Layers()
	if err != nil {
		return err
	}
	for i, layer := range layers {
		printDetail("layer %-3d %s", i, formatIDs(layer))
	}
	return nil
}

// formatIDs renders task IDs as a space-separated list.
func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, " ")
}
