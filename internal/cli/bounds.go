package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linebalance/pkg/bounds"
	"github.com/matzehuels/linebalance/pkg/instance"
	"github.com/matzehuels/linebalance/pkg/plan"
)

// newBoundsCmd creates the bounds command.
// It prints the estimated station interval for every task of an instance.
func newBoundsCmd() *cobra.Command {
	var margin float64

	cmd := &cobra.Command{
		Use:   "bounds <instance.json>",
		Short: "Print estimated station intervals per task",
		Long: `Estimate, for every task, the earliest and latest station it can
occupy on a line of the estimated length. A larger --margin widens the
intervals by assuming a longer line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("margin") {
				if cfg := configFromContext(c.Context()); cfg.Margin != 0 {
					margin = cfg.Margin
				}
			}
			return runBounds(args[0], margin)
		},
	}

	cmd.Flags().Float64Var(&margin, "margin", bounds.DefaultMargin, "slack factor for the estimated line length")

	return cmd
}

func runBounds(path string, margin float64) error {
	prob, err := instance.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}
	p, err := plan.New(prob)
	if err != nil {
		return err
	}

	intervals, err := bounds.Compute(p, margin)
	if err != nil {
		return err
	}

	printKeyValue("cycle time", fmt.Sprintf("%d", bounds.CycleTime(p)))
	printKeyValue("margin", fmt.Sprintf("%.2f", margin))

	ids := make([]int, 0, len(intervals))
	for id := range intervals {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		iv := intervals[id]
		printDetail("task %-4d stations %d..%d", id, iv.Min, iv.Max)
	}
	return nil
}
