package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linebalance/pkg/bounds"
	"github.com/matzehuels/linebalance/pkg/cache"
	"github.com/matzehuels/linebalance/pkg/construct"
	"github.com/matzehuels/linebalance/pkg/instance"
	"github.com/matzehuels/linebalance/pkg/observability"
	"github.com/matzehuels/linebalance/pkg/plan"
	"github.com/matzehuels/linebalance/pkg/render"
	"github.com/matzehuels/linebalance/pkg/score"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete analyze → construct → evaluate → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	prob, err := opts.Instance.Problem()
	if err != nil {
		return nil, fmt.Errorf("invalid instance: %w", err)
	}

	data, err := instance.Marshal(prob)
	if err != nil {
		return nil, fmt.Errorf("hash instance: %w", err)
	}

	result := &Result{
		Problem:      prob,
		InstanceHash: cache.Hash(data),
		Artifacts:    make(map[string][]byte),
	}

	// Stage 1: Analyze
	analyzeStart := time.Now()
	observability.Solver().OnAnalyzeStart(ctx, len(prob.Tasks))
	intervals, boundsHit, err := r.AnalyzeWithCacheInfo(ctx, prob, result.InstanceHash, opts)
	observability.Solver().OnAnalyzeComplete(ctx, len(prob.Tasks), time.Since(analyzeStart), err)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Intervals = intervals
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.TaskCount = len(prob.Tasks)

	r.Logger.Info("analyzed instance",
		"tasks", len(prob.Tasks),
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Construct
	constructStart := time.Now()
	observability.Solver().OnConstructStart(ctx, opts.Strategy, len(prob.Tasks))
	p, planHit, err := r.ConstructWithCacheInfo(ctx, prob, result.InstanceHash, opts)
	observability.Solver().OnConstructComplete(ctx, opts.Strategy, time.Since(constructStart), err)
	if err != nil {
		return nil, fmt.Errorf("construct: %w", err)
	}
	result.Plan = p
	result.Assignment = Assignment(p)
	result.CycleTime = bounds.CycleTime(p)
	result.Loads = p.Loads()
	result.Stats.ConstructTime = time.Since(constructStart)
	result.Stats.StationCount = usedStations(result.Loads)
	result.CacheInfo.BoundsHit = boundsHit
	result.CacheInfo.PlanHit = planHit

	r.Logger.Info("constructed plan",
		"strategy", opts.Strategy,
		"stations", result.Stats.StationCount,
		"duration", result.Stats.ConstructTime)

	// Stage 3: Evaluate
	evaluateStart := time.Now()
	observability.Solver().OnEvaluateStart(ctx, len(prob.Tasks))
	sc, err := score.CrossCheck(p)
	observability.Solver().OnEvaluateComplete(ctx, sc.Feasible(), time.Since(evaluateStart), err)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	result.Score = sc
	result.Features = score.Measure(p)
	result.Stats.EvaluateTime = time.Since(evaluateStart)

	r.Logger.Info("evaluated plan",
		"score", sc.String(),
		"feasible", sc.Feasible(),
		"duration", result.Stats.EvaluateTime)

	// Stage 4: Render (optional)
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// AnalyzeWithCacheInfo estimates station intervals with caching and returns
// cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, prob plan.Problem, instanceHash string, opts Options) (map[int]bounds.Interval, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.BoundsKey(instanceHash, opts.BoundsKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit := r.cacheGet(ctx, cacheKey); hit {
			var cached map[int]bounds.Interval
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "bounds")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "bounds")
	}

	p, err := plan.New(prob)
	if err != nil {
		return nil, false, err
	}
	intervals, err := bounds.Compute(p, opts.Margin)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(intervals); err == nil {
		r.cacheSet(ctx, cacheKey, data, cache.TTLBounds)
		observability.Cache().OnCacheSet(ctx, "bounds", len(data))
	}

	return intervals, false, nil
}

// Analyze is a convenience wrapper that discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, prob plan.Problem, instanceHash string, opts Options) (map[int]bounds.Interval, error) {
	intervals, _, err := r.AnalyzeWithCacheInfo(ctx, prob, instanceHash, opts)
	return intervals, err
}

// ConstructWithCacheInfo builds a plan with caching and returns cache hit info.
func (r *Runner) ConstructWithCacheInfo(ctx context.Context, prob plan.Problem, instanceHash string, opts Options) (*plan.Plan, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	strategy, err := construct.ParseStrategy(opts.Strategy)
	if err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.PlanKey(instanceHash, opts.PlanKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit := r.cacheGet(ctx, cacheKey); hit {
			if p, err := replay(prob, data); err == nil {
				observability.Cache().OnCacheHit(ctx, "plan")
				return p, true, nil
			}
			// Stale or corrupt entry, rebuild below
		}
		observability.Cache().OnCacheMiss(ctx, "plan")
	}

	p, err := construct.Build(prob, opts.Seed, strategy)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(Assignment(p)); err == nil {
		r.cacheSet(ctx, cacheKey, data, cache.TTLPlan)
		observability.Cache().OnCacheSet(ctx, "plan", len(data))
	}

	return p, false, nil
}

// Construct is a convenience wrapper that discards the cache hit info.
func (r *Runner) Construct(ctx context.Context, prob plan.Problem, instanceHash string, opts Options) (*plan.Plan, error) {
	p, _, err := r.ConstructWithCacheInfo(ctx, prob, instanceHash, opts)
	return p, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. The result must carry the constructed plan.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	planData, err := json.Marshal(struct {
		Instance   string      `json:"instance"`
		Assignment map[int]int `json:"assignment"`
	}{result.InstanceHash, result.Assignment})
	if err != nil {
		return nil, false, fmt.Errorf("serialize plan for cache key: %w", err)
	}
	planHash := cache.Hash(planData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(planHash, opts.RenderKeyOpts(format))
		if data, hit := r.cacheGet(ctx, cacheKey); hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		renderStart := time.Now()
		observability.Solver().OnRenderStart(ctx, format)
		data, err := r.renderFormat(result, format, opts)
		observability.Solver().OnRenderComplete(ctx, format, time.Since(renderStart), err)
		if err != nil {
			return nil, false, err
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(planHash, opts.RenderKeyOpts(format))
		r.cacheSet(ctx, cacheKey, data, cache.TTLRender)
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}

	return rendered, false, nil
}

// cacheGet reads a cache entry, retrying transient backend failures. Cache
// trouble never fails a solve; the caller just sees a miss and recomputes.
func (r *Runner) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() error {
		d, h, err := r.Cache.Get(ctx, key)
		if err != nil {
			return err
		}
		data, hit = d, h
		return nil
	})
	if err != nil {
		r.Logger.Debug("cache get failed", "key", key, "err", err)
		return nil, false
	}
	return data, hit
}

// cacheSet writes a cache entry, retrying transient backend failures.
// Failures are logged and dropped; the entry is simply not cached.
func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) {
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Debug("cache set failed", "key", key, "err", err)
	}
}

// renderFormat produces a single artifact for the given format.
func (r *Runner) renderFormat(result *Result, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(render.ToDOT(result.Plan, render.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		return render.SVG(render.ToDOT(result.Plan, render.Options{Detailed: opts.Detailed}))
	case FormatJSON:
		return json.MarshalIndent(Summary(result), "", "  ")
	default:
		return nil, ValidateFormat(format)
	}
}

// PlanSummary is the JSON artifact describing a solved plan.
type PlanSummary struct {
	InstanceHash string      `json:"instance_hash"`
	Assignment   map[int]int `json:"assignment"`
	Loads        []int       `json:"loads"`
	CycleTime    int         `json:"cycle_time"`
	Stations     int         `json:"stations"`
	Score        [3]int64    `json:"score"`
	Feasible     bool        `json:"feasible"`
}

// Summary converts a pipeline result into its JSON artifact form.
func Summary(result *Result) PlanSummary {
	return PlanSummary{
		InstanceHash: result.InstanceHash,
		Assignment:   result.Assignment,
		Loads:        result.Loads,
		CycleTime:    result.CycleTime,
		Stations:     result.Stats.StationCount,
		Score:        [3]int64{result.Score.Hard, result.Score.Medium, result.Score.Soft},
		Feasible:     result.Score.Feasible(),
	}
}

// Assignment extracts the task to station mapping from a plan.
// Unassigned tasks are omitted.
func Assignment(p *plan.Plan) map[int]int {
	out := make(map[int]int, len(p.Tasks()))
	for _, t := range p.Tasks() {
		if s := t.Station(); s != nil {
			out[t.ID()] = s.Number()
		}
	}
	return out
}

// replay rebuilds a plan from a cached assignment.
func replay(prob plan.Problem, data []byte) (*plan.Plan, error) {
	var assignment map[int]int
	if err := json.Unmarshal(data, &assignment); err != nil {
		return nil, err
	}
	if len(assignment) != len(prob.Tasks) {
		return nil, fmt.Errorf("cached assignment covers %d of %d tasks", len(assignment), len(prob.Tasks))
	}

	p, err := plan.New(prob)
	if err != nil {
		return nil, err
	}
	for taskID, station := range assignment {
		if err := p.Assign(taskID, station); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// usedStations counts stations with a nonzero load.
func usedStations(loads []int) int {
	n := 0
	for _, load := range loads {
		if load > 0 {
			n++
		}
	}
	return n
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
