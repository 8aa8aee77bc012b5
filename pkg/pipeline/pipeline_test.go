package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/linebalance/pkg/cache"
	"github.com/matzehuels/linebalance/pkg/instance"
)

// flakyCache fails the first N calls of each method with failWith, then
// serves from an in-memory map.
type flakyCache struct {
	entries  map[string][]byte
	failures int
	failWith error
	getCalls int
	setCalls int
}

func (c *flakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.getCalls++
	if c.getCalls <= c.failures {
		return nil, false, c.failWith
	}
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *flakyCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.setCalls++
	if c.setCalls <= c.failures {
		return c.failWith
	}
	c.entries[key] = data
	return nil
}

func (c *flakyCache) Delete(ctx context.Context, key string) error { return nil }
func (c *flakyCache) Close() error                                 { return nil }

func testInstance() instance.Instance {
	return instance.Instance{
		Tasks: []instance.Task{
			{ID: 0, Time: 10},
			{ID: 1, Time: 12, Predecessors: []int{0}},
			{ID: 2, Time: 14, Predecessors: []int{0}},
			{ID: 3, Time: 9, Predecessors: []int{1, 2}},
		},
		CycleTime: 25,
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"dot", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"dot", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStrategy(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"random-feasible", false},
		{"breadth-first", false},
		{"compacting-breadth-first", false},
		{"depth-first", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStrategy(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStrategy(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Instance: testInstance()}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	if opts.Strategy != DefaultStrategy {
		t.Errorf("Strategy should be %q, got %q", DefaultStrategy, opts.Strategy)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
	if opts.Margin != DefaultMargin {
		t.Errorf("Margin should be %v, got %v", DefaultMargin, opts.Margin)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsRejectsBadMargin(t *testing.T) {
	opts := Options{Instance: testInstance(), Margin: 0.5}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("Margin below 1.0 should fail validation")
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Instance: testInstance(),
		Seed:     7,
		Formats:  []string{FormatDOT, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !result.Score.Feasible() {
		t.Errorf("constructed plan should be feasible, score %s", result.Score)
	}
	if len(result.Assignment) != 4 {
		t.Errorf("all tasks should be assigned, got %v", result.Assignment)
	}
	if result.InstanceHash == "" {
		t.Error("instance hash should be set")
	}
	if result.Stats.TaskCount != 4 {
		t.Errorf("TaskCount = %d, want 4", result.Stats.TaskCount)
	}
	if result.Stats.StationCount < 2 {
		t.Errorf("45 time units at cycle 25 need at least 2 stations, got %d", result.Stats.StationCount)
	}

	// Artifacts
	if len(result.Artifacts[FormatDOT]) == 0 {
		t.Error("dot artifact should be rendered")
	}
	var summary PlanSummary
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &summary); err != nil {
		t.Fatalf("json artifact should parse: %v", err)
	}
	if !summary.Feasible {
		t.Error("summary should report a feasible plan")
	}
	if len(summary.Assignment) != 4 {
		t.Errorf("summary assignment should cover all tasks, got %v", summary.Assignment)
	}
}

func TestExecuteDeterministicPerSeed(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	opts := Options{Instance: testInstance(), Seed: 11}
	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for id, station := range first.Assignment {
		if second.Assignment[id] != station {
			t.Fatalf("assignment differs for task %d: %d vs %d", id, station, second.Assignment[id])
		}
	}
	if first.Score != second.Score {
		t.Errorf("scores differ: %s vs %s", first.Score, second.Score)
	}
}

func TestExecuteCacheHits(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	opts := Options{Instance: testInstance(), Formats: []string{FormatDOT}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.PlanHit || first.CacheInfo.BoundsHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss everywhere: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.PlanHit || !second.CacheInfo.BoundsHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit everywhere: %+v", second.CacheInfo)
	}
	if second.Score != first.Score {
		t.Errorf("cached run should score identically: %s vs %s", second.Score, first.Score)
	}

	// Refresh bypasses the cache
	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.CacheInfo.PlanHit || third.CacheInfo.BoundsHit {
		t.Errorf("refresh run should not hit: %+v", third.CacheInfo)
	}
}

func TestExecuteRejectsBadInstance(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		Instance: instance.Instance{}, // no tasks
	})
	if err == nil {
		t.Error("empty instance should fail")
	}
}

func TestRunnerCacheRetriesTransientFailures(t *testing.T) {
	fc := &flakyCache{
		entries:  map[string][]byte{"bounds:abc": []byte("cached")},
		failures: 1,
		failWith: cache.Retryable(cache.ErrNetwork),
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	data, hit := runner.cacheGet(ctx, "bounds:abc")
	if !hit || string(data) != "cached" {
		t.Fatalf("cacheGet = (%q, %v), want cached entry after retry", data, hit)
	}
	if fc.getCalls != 2 {
		t.Errorf("transient Get failure should be retried once, got %d calls", fc.getCalls)
	}

	runner.cacheSet(ctx, "plan:abc", []byte("entry"), time.Minute)
	if fc.setCalls != 2 {
		t.Errorf("transient Set failure should be retried once, got %d calls", fc.setCalls)
	}
	if string(fc.entries["plan:abc"]) != "entry" {
		t.Error("entry should be written on the retry")
	}
}

func TestRunnerCacheTreatsPermanentFailureAsMiss(t *testing.T) {
	fc := &flakyCache{
		entries:  map[string][]byte{"bounds:abc": []byte("cached")},
		failures: 3,
		failWith: errors.New("bad credentials"),
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	if _, hit := runner.cacheGet(ctx, "bounds:abc"); hit {
		t.Error("permanent backend failure should read as a miss")
	}
	if fc.getCalls != 1 {
		t.Errorf("permanent Get failure should not be retried, got %d calls", fc.getCalls)
	}

	runner.cacheSet(ctx, "plan:abc", []byte("entry"), time.Minute)
	if fc.setCalls != 1 {
		t.Errorf("permanent Set failure should not be retried, got %d calls", fc.setCalls)
	}
	if _, ok := fc.entries["plan:abc"]; ok {
		t.Error("failed write should not land in the cache")
	}
}

func TestAssignmentRoundTrip(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{Instance: testInstance()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := json.Marshal(result.Assignment)
	if err != nil {
		t.Fatalf("marshal assignment: %v", err)
	}
	p, err := replay(result.Problem, data)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	for id, station := range Assignment(p) {
		if result.Assignment[id] != station {
			t.Errorf("replayed assignment differs for task %d", id)
		}
	}
}
