package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linebalance/pkg/instance"
	"github.com/matzehuels/linebalance/pkg/plan"
	"github.com/matzehuels/linebalance/pkg/score"
)

// newScoreCmd creates the score command.
// It evaluates an existing assignment against an instance with both score
// engines and prints the full feature breakdown.
func newScoreCmd() *cobra.Command {
	var featuresFlag bool

	cmd := &cobra.Command{
		Use:   "score <instance.json> <assignment.json>",
		Short: "Evaluate an existing station assignment",
		Long: `Evaluate a station assignment against an instance file.

The assignment file maps task IDs to station numbers, as produced by
"construct --formats json":

  {"0": 0, "1": 0, "2": 1}

Both score engines run and their results are cross-checked.`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runScore(args[0], args[1], featuresFlag)
		},
	}

	cmd.Flags().BoolVar(&featuresFlag, "features", false, "print the full feature breakdown")

	return cmd
}

func runScore(instancePath, assignmentPath string, features bool) error {
	prob, err := instance.ReadFile(instancePath)
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}

	assignment, err := readAssignment(assignmentPath)
	if err != nil {
		return fmt.Errorf("read assignment: %w", err)
	}

	p, err := plan.New(prob)
	if err != nil {
		return err
	}
	for taskID, station := range assignment {
		if err := p.Assign(taskID, station); err != nil {
			return err
		}
	}

	sc, err := score.CrossCheck(p)
	if err != nil {
		return err
	}

	printScore(sc)
	printKeyValue("loads", formatLoads(p.Loads()))

	if features {
		f := score.Measure(p)
		printNewlineSection("features")
		printDetail("direct inversions   %d", f.DirectInversions)
		printDetail("strict inversions   %d", f.StrictInversions)
		printDetail("deep inversions     %d", f.DeepInversions)
		printDetail("dependency distance %d", f.DependencyDistance)
		printDetail("violations          %d", f.Violations)
		printDetail("excess              %d", f.Excess)
		printDetail("used stations       %d", f.UsedStations)
		printDetail("span                %d", f.Span)
		printDetail("max load            %d", f.MaxLoad)
		printDetail("squared loads       %d", f.SquaredLoads)
	}
	return nil
}

// printNewlineSection prints a dim section header after a blank line.
func printNewlineSection(name string) {
	fmt.Println()
	fmt.Println(StyleDim.Render(name))
}

// readAssignment loads a task to station mapping from a JSON file.
// Both plain maps and the summary written by "construct --formats json" are
// accepted.
func readAssignment(path string) (map[int]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var direct map[int]int
	if err := json.Unmarshal(data, &direct); err == nil && len(direct) > 0 {
		return direct, nil
	}

	var summary struct {
		Assignment map[int]int `json:"assignment"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	if len(summary.Assignment) == 0 {
		return nil, fmt.Errorf("no assignment found in %s", path)
	}
	return summary.Assignment, nil
}
