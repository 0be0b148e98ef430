// Package estimate produces render-height estimates for gallery items.
//
// Heights are needed before anything has actually rendered: the partitioner
// balances columns on best-known heights, and a freshly loaded gallery knows
// nothing beyond (at best) an intrinsic aspect ratio per photo. The estimator
// is a pure function of the item and the current column width - no state, no
// side effects - so re-estimating after a breakpoint change is cheap and
// reproducible.
package estimate

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// Default clamp bounds and padding, in layout units.
const (
	// DefaultMinHeight bounds pathologically short items (thin panoramas,
	// degenerate ratios) so no column entry collapses to nothing.
	DefaultMinHeight = 150.0

	// DefaultMaxHeight bounds pathologically tall items so a single portrait
	// cannot dwarf an entire column.
	DefaultMaxHeight = 800.0

	// DefaultPadding is the fixed per-item chrome (caption bar, margins)
	// added on top of the image height.
	DefaultPadding = 16.0
)

// ratioEntry is one row of the fallback aspect-ratio table.
type ratioEntry struct {
	ratio  float64 // width / height
	weight float64
}

// fallbackRatios is the weighted table used when an item carries no
// intrinsic dimensions. Weights reflect how common each shape is in a
// typical photo collection.
var fallbackRatios = []ratioEntry{
	{ratio: 3.0 / 2.0, weight: 0.4}, // landscape
	{ratio: 2.0 / 3.0, weight: 0.3}, // portrait
	{ratio: 1.0, weight: 0.2},       // square
	{ratio: 4.0 / 3.0, weight: 0.1}, // other
}

// Estimator computes height estimates for a given column width.
//
// The zero value is not usable - construct with New. Estimators are
// immutable and safe for concurrent use.
type Estimator struct {
	minHeight float64
	maxHeight float64
	padding   float64
	rng       *rand.Rand
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithBounds overrides the clamp bounds.
func WithBounds(minH, maxH float64) Option {
	return func(e *Estimator) {
		e.minHeight = minH
		e.maxHeight = maxH
	}
}

// WithPadding overrides the fixed per-item padding.
func WithPadding(p float64) Option {
	return func(e *Estimator) {
		e.padding = p
	}
}

// WithRandom switches the no-signal fallback from the deterministic
// hash-derived draw to a true weighted-random draw from rng. Layouts become
// non-reproducible across runs for items lacking intrinsic dimensions; only
// enable this when visual variety is an explicit product requirement.
func WithRandom(rng *rand.Rand) Option {
	return func(e *Estimator) {
		e.rng = rng
	}
}

// New creates an estimator with the default bounds and padding.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		minHeight: DefaultMinHeight,
		maxHeight: DefaultMaxHeight,
		padding:   DefaultPadding,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns a positive height estimate for the item at the given
// column width. Items with a known intrinsic ratio map directly to
// columnWidth/ratio plus padding; items without one draw a ratio from the
// weighted fallback table, selected by an FNV hash of the item ID so the
// same item always gets the same shape. The result is clamped to the
// configured bounds; non-finite intermediate values clamp to the minimum.
func (e *Estimator) Estimate(id string, aspectRatio, columnWidth float64) float64 {
	ratio := aspectRatio
	if !(ratio > 0) || math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		ratio = e.fallbackRatio(id)
	}

	h := columnWidth/ratio + e.padding
	return e.clamp(h)
}

// clamp bounds h to [minHeight, maxHeight]. NaN and infinities collapse to
// the minimum so degenerate inputs cannot corrupt the variation metric
// downstream.
func (e *Estimator) clamp(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < e.minHeight {
		return e.minHeight
	}
	if h > e.maxHeight {
		return e.maxHeight
	}
	return h
}

// fallbackRatio picks an aspect ratio from the weighted table.
// The selector is either a uniform draw from the configured rng or, by
// default, a hash of the item ID mapped into [0,1) - deterministic across
// runs and processes.
func (e *Estimator) fallbackRatio(id string) float64 {
	var u float64
	if e.rng != nil {
		u = e.rng.Float64()
	} else {
		u = hashUnit(id)
	}

	for _, entry := range fallbackRatios {
		if u < entry.weight {
			return entry.ratio
		}
		u -= entry.weight
	}
	return fallbackRatios[len(fallbackRatios)-1].ratio
}

// hashUnit maps a string to a pseudo-random value in [0,1) via FNV-1a.
func hashUnit(s string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum64()>>11) / float64(1<<53)
}
