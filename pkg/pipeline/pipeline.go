// Package pipeline provides the core balancing pipeline for linebalance.
//
// This package implements the complete analyze → construct → evaluate →
// render pipeline that can be used by CLI and API components. By centralizing
// this logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Analyze: Build the plan and estimate station intervals per task
//  2. Construct: Run a constructive heuristic to assign tasks to stations
//  3. Evaluate: Score the plan with both engines and cross-check them
//  4. Render: Generate output artifacts (DOT, SVG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Instance: inst,
//	    Strategy: "random-feasible",
//	    Seed:     7,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Score)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linebalance/pkg/bounds"
	"github.com/matzehuels/linebalance/pkg/cache"
	"github.com/matzehuels/linebalance/pkg/construct"
	"github.com/matzehuels/linebalance/pkg/instance"
	"github.com/matzehuels/linebalance/pkg/plan"
	"github.com/matzehuels/linebalance/pkg/score"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultStrategy is the default constructive heuristic.
	DefaultStrategy = "random-feasible"

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultMargin is the default slack factor for station interval
	// estimation. It mirrors bounds.DefaultMargin.
	DefaultMargin = bounds.DefaultMargin
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the balancing pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Instance is the problem to balance.
	Instance instance.Instance `json:"instance"`

	// Construct options
	Strategy string `json:"strategy,omitempty"`
	Seed     uint64 `json:"seed,omitempty"`

	// Analyze options
	Margin float64 `json:"margin,omitempty"`

	// Render options. An empty list skips the render stage.
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses cached plans and bounds.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Problem is the validated problem definition.
	Problem plan.Problem

	// InstanceHash is the content hash of the instance.
	InstanceHash string

	// Plan is the constructed plan.
	Plan *plan.Plan

	// Assignment maps task IDs to station numbers.
	Assignment map[int]int

	// CycleTime is the capacity used during construction. For fixed-station
	// instances this is the derived lower bound.
	CycleTime int

	// Intervals contains the estimated station interval per task.
	Intervals map[int]bounds.Interval

	// Score is the cross-checked lexicographic score of the plan.
	Score score.Score

	// Features is the full feature breakdown from the reference engine.
	Features score.Features

	// Loads contains per-station load totals.
	Loads []int

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TaskCount     int
	StationCount  int
	AnalyzeTime   time.Duration
	ConstructTime time.Duration
	EvaluateTime  time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BoundsHit bool // Whether interval estimates came from cache
	PlanHit   bool // Whether the constructed plan came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a strategy name is known.
func ValidateStrategy(name string) error {
	_, err := construct.ParseStrategy(name)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Margin < 1.0 {
		return bounds.ErrMargin
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// PlanKeyOpts returns cache key options for plan construction.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		Strategy: o.Strategy,
		Seed:     o.Seed,
	}
}

// BoundsKeyOpts returns cache key options for interval estimation.
func (o *Options) BoundsKeyOpts() cache.BoundsKeyOpts {
	return cache.BoundsKeyOpts{
		Margin: o.Margin,
	}
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
