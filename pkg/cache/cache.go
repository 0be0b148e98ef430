// Package cache provides pluggable byte caches and key derivation for the
// layout pipeline. Layout results and rendered artifacts are cached by
// content hash, so identical feeds laid out with identical tuning hit the
// cache regardless of where the request came from.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached stage. Layout results are a pure function of
// their key, so the TTLs exist to bound disk/redis growth, not freshness.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present (a miss is not an error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}

// LayoutKeyOpts identifies the tuning that shaped a layout result. Two
// runs over the same feed with different tuning must not share a cache
// entry.
type LayoutKeyOpts struct {
	Columns         int     `json:"columns"`
	ColumnWidth     float64 `json:"column_width"`
	TargetVariation float64 `json:"target_variation"`
	MaxIterations   int     `json:"max_iterations"`
	Randomize       bool    `json:"randomize"`
	Seed            uint64  `json:"seed"`
}

// ArtifactKeyOpts identifies a rendered output derived from a layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"` // "json" or "svg"
	Labels bool   `json:"labels"`
	Stats  bool   `json:"stats"`
}

// Keyer derives cache keys for the two cacheable pipeline stages.
type Keyer interface {
	// LayoutKey keys a partition result by feed content hash and tuning.
	LayoutKey(feedHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by layout hash and format.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key derivation: a stage prefix plus a
// SHA-256 over the identifying inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for a cached partition result.
func (k *DefaultKeyer) LayoutKey(feedHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", feedHash, opts)
}

// ArtifactKey generates a key for a cached rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
