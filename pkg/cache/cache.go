// Package cache provides caching for solver results and derived artifacts.
//
// # Architecture
//
// The package separates key generation (Keyer) from storage (Cache) so the
// same keys work across backends. Three backends are provided:
//
//   - FileCache: directory-based storage for CLI usage
//   - RedisCache: shared storage for the HTTP service
//   - NullCache: no-op storage for tests and --no-cache runs
//
// Keys are content-addressed: an instance hash plus the options that shaped
// the result. Two runs with the same instance, strategy and seed hit the same
// entry regardless of where they run.
package cache

import (
	"context"
	"time"
)

// Default TTLs per result kind. Plans and bounds are deterministic in their
// inputs so they keep long TTLs; rendered artifacts are cheap to rebuild.
const (
	TTLPlan   = 30 * 24 * time.Hour
	TTLBounds = 30 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Get returns (data, hit, error); a miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer generates cache keys for the different result kinds.
type Keyer interface {
	// PlanKey identifies a constructed plan for an instance.
	PlanKey(instanceHash string, opts PlanKeyOpts) string

	// BoundsKey identifies station interval estimates for an instance.
	BoundsKey(instanceHash string, opts BoundsKeyOpts) string

	// RenderKey identifies a rendered artifact for a plan.
	RenderKey(planHash string, opts RenderKeyOpts) string
}

// PlanKeyOpts captures everything that changes a constructed plan.
type PlanKeyOpts struct {
	Strategy string
	Seed     uint64
}

// BoundsKeyOpts captures everything that changes interval estimates.
type BoundsKeyOpts struct {
	Margin float64
}

// RenderKeyOpts captures everything that changes a rendered artifact.
type RenderKeyOpts struct {
	Format   string
	Detailed bool
}

// DefaultKeyer generates hash-based keys with kind prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PlanKey generates a key for a constructed plan.
func (k *DefaultKeyer) PlanKey(instanceHash string, opts PlanKeyOpts) string {
	return hashKey("plan", instanceHash, opts)
}

// BoundsKey generates a key for interval estimates.
func (k *DefaultKeyer) BoundsKey(instanceHash string, opts BoundsKeyOpts) string {
	return hashKey("bounds", instanceHash, opts)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(planHash string, opts RenderKeyOpts) string {
	return hashKey("render", planHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
