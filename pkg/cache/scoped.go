package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The HTTP service uses this to keep per-deployment caches separate
// when several instances share one Redis.
//
// Example usage:
//
//	// Deployment-specific keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlanKey generates a prefixed key for a constructed plan.
func (k *ScopedKeyer) PlanKey(instanceHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(instanceHash, opts)
}

// BoundsKey generates a prefixed key for interval estimates.
func (k *ScopedKeyer) BoundsKey(instanceHash string, opts BoundsKeyOpts) string {
	return k.prefix + k.inner.BoundsKey(instanceHash, opts)
}

// RenderKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) RenderKey(planHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(planHash, opts)
}
