package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linebalance/pkg/construct"
	"github.com/matzehuels/linebalance/pkg/instance"
	"github.com/matzehuels/linebalance/pkg/pipeline"
)

// constructOpts holds the command-line flags for the construct command.
type constructOpts struct {
	strategy string // heuristic name, empty triggers the interactive picker
	seed     uint64 // random seed for reproducibility
	margin   float64
	formats  string // comma-separated artifact formats
	output   string // artifact path prefix (stdout for single json/dot)
	refresh  bool   // bypass cached plans and bounds
	noCache  bool   // disable caching entirely
	detailed bool   // include times and loads in rendered artifacts
}

// newConstructCmd creates the construct command.
// It reads an instance file, runs a constructive heuristic through the
// pipeline, and prints the resulting assignment and score.
func newConstructCmd() *cobra.Command {
	var opts constructOpts

	cmd := &cobra.Command{
		Use:   "construct <instance.json>",
		Short: "Build a station assignment with a constructive heuristic",
		Long: `Build a station assignment for an instance file using one of the
constructive heuristics.

Without --strategy, an interactive picker is shown when running in a terminal.

Examples:
  linebalance construct line.json                           # interactive picker
  linebalance construct line.json --strategy breadth-first
  linebalance construct line.json --seed 7 --formats dot,svg -o out/line`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runConstruct(c, &opts, args[0])
		},
	}

	cfg := defaultConfig()
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", fmt.Sprintf("heuristic (%s)", strategyNames()))
	cmd.Flags().Uint64Var(&opts.seed, "seed", cfg.Seed, "random seed")
	cmd.Flags().Float64Var(&opts.margin, "margin", cfg.Margin, "slack factor for station intervals")
	cmd.Flags().StringVarP(&opts.formats, "formats", "f", "", "artifact formats (dot,svg,json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "artifact path prefix (stdout if empty)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include task times and loads in artifacts")

	return cmd
}

func runConstruct(c *cobra.Command, opts *constructOpts, path string) error {
	ctx := c.Context()
	cfg := configFromContext(ctx)

	// Flags beat config, config beats the interactive picker.
	strategy := opts.strategy
	if strategy == "" {
		strategy = cfg.Strategy
	}
	if strategy == "" {
		picked, err := pickStrategy()
		if err != nil {
			return err
		}
		strategy = picked
	}
	if !c.Flags().Changed("seed") {
		opts.seed = cfg.Seed
	}
	if !c.Flags().Changed("margin") && cfg.Margin != 0 {
		opts.margin = cfg.Margin
	}

	prob, err := instance.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}

	runner, err := newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Balancing %s with %s", filepath.Base(path), strategy))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Instance: instance.FromProblem(prob),
		Strategy: strategy,
		Seed:     opts.seed,
		Margin:   opts.margin,
		Formats:  parseFormats(opts.formats),
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
		Logger:   loggerFromContext(ctx),
	})
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Balancing failed: %v", err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Balanced %d tasks onto %d stations", result.Stats.TaskCount, result.Stats.StationCount))

	printStats(result.Stats.TaskCount, result.Stats.StationCount, result.CacheInfo.PlanHit)
	printScore(result.Score)
	printKeyValue("cycle time", fmt.Sprintf("%d", result.CycleTime))
	printKeyValue("loads", formatLoads(result.Loads))
	printAssignment(result.Assignment)

	if err := writeArtifacts(result, opts.output); err != nil {
		return err
	}

	if opts.formats == "" {
		printNextStep("Render it", fmt.Sprintf("linebalance construct %s --strategy %s --formats svg -o plan", path, strategy))
	}
	return nil
}

// writeArtifacts writes rendered artifacts next to the given prefix.
// With an empty prefix a single artifact goes to stdout; multiple artifacts
// require a prefix so each format gets its own file.
func writeArtifacts(result *pipeline.Result, prefix string) error {
	if len(result.Artifacts) == 0 {
		return nil
	}
	if prefix == "" && len(result.Artifacts) > 1 {
		return fmt.Errorf("multiple formats need --output")
	}

	for format, data := range result.Artifacts {
		path := ""
		if prefix != "" {
			path = prefix + "." + format
		}
		out, err := openOutput(path)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s artifact: %w", format, err)
		}
		if path != "" {
			printFile(path)
		}
	}
	return nil
}

// printAssignment prints the station of every task, grouped by station.
func printAssignment(assignment map[int]int) {
	byStation := make(map[int][]int)
	for taskID, station := range assignment {
		byStation[station] = append(byStation[station], taskID)
	}

	stations := make([]int, 0, len(byStation))
	for s := range byStation {
		stations = append(stations, s)
	}
	sort.Ints(stations)

	for _, s := range stations {
		tasks := byStation[s]
		sort.Ints(tasks)
		parts := make([]string, len(tasks))
		for i, id := range tasks {
			parts[i] = fmt.Sprintf("%d", id)
		}
		printDetail("station %d: %s", s, strings.Join(parts, " "))
	}
}

// formatLoads renders nonzero station loads as a compact list.
func formatLoads(loads []int) string {
	parts := make([]string, 0, len(loads))
	for _, load := range loads {
		if load > 0 {
			parts = append(parts, fmt.Sprintf("%d", load))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// strategyNames lists all heuristic names for flag help.
func strategyNames() string {
	all := construct.Strategies()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
