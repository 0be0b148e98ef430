package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. The
// layout service uses it to keep per-tenant galleries from sharing cache
// entries even when feed contents collide.
//
// Example usage:
//
//	// Tenant-specific keys
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
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

// LayoutKey generates a prefixed key for a cached partition result.
func (k *ScopedKeyer) LayoutKey(feedHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(feedHash, opts)
}

// ArtifactKey generates a prefixed key for a cached rendered artifact.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
