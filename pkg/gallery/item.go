// Package gallery defines the item data model consumed by the layout engine.
//
// A gallery is fed by some collaborator (a photo backend, a DOM scanner, a
// test fixture) as an ordered list of item descriptors. The engine never
// touches image bytes - it only needs a stable identity, the canonical
// position, and whatever height signal is available.
package gallery

import (
	"math"

	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/errors"
)

// Item describes a single gallery entry for layout purposes.
//
// ID is immutable for the lifetime of the item. OriginalIndex records the
// first-seen (chronological) position and is never renumbered, even when
// earlier items are removed - it is an identity property, not a live index.
type Item struct {
	ID            string  `json:"id" bson:"id"`
	OriginalIndex int     `json:"original_index" bson:"original_index"`
	AspectRatio   float64 `json:"aspect_ratio,omitempty" bson:"aspect_ratio,omitempty"`

	// EstimatedHeight is column-width-dependent and recomputed whenever the
	// column width changes.
	EstimatedHeight float64 `json:"estimated_height,omitempty" bson:"estimated_height,omitempty"`

	// MeasuredHeight is the real render height reported post-render.
	// Once set it takes precedence over EstimatedHeight for future layouts.
	MeasuredHeight float64 `json:"measured_height,omitempty" bson:"measured_height,omitempty"`
}

// BestHeight returns the measured height if known, otherwise the estimate.
func (it Item) BestHeight() float64 {
	if it.MeasuredHeight > 0 {
		return it.MeasuredHeight
	}
	return it.EstimatedHeight
}

// HasIntrinsicRatio reports whether the item carries a usable aspect ratio.
func (it Item) HasIntrinsicRatio() bool {
	return it.AspectRatio > 0 && !math.IsInf(it.AspectRatio, 0) && !math.IsNaN(it.AspectRatio)
}

// Validate checks the item descriptor for structural problems.
func (it Item) Validate() error {
	if err := errors.ValidateItemID(it.ID); err != nil {
		return err
	}
	if it.OriginalIndex < 0 {
		return errors.New(errors.ErrCodeInvalidItem, "original index must be non-negative, got %d", it.OriginalIndex)
	}
	return nil
}

// NewID generates a fresh opaque item ID.
// Feeds that arrive without IDs (e.g. scraped fixtures) get one at ingest.
func NewID() string {
	return uuid.NewString()
}
