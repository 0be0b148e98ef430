// Package pipeline provides the core layout pipeline for Masonry.
//
// This package implements the complete estimate → partition → render
// pipeline that can be used by CLI, API, and preview components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Estimate: Derive a height for every item at the current column width
//  2. Partition: Distribute items across columns minimizing height variation
//  3. Render: Generate output in various formats (JSON, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Items:          feed.Items,
//	    ContainerWidth: 1300,
//	    Formats:        []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/partition"
	"github.com/matzehuels/masonry/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Preview
// =============================================================================

const (
	// DefaultContainerWidth is the assumed viewport width when none is given.
	DefaultContainerWidth = 1200.0

	// DefaultGutter is the inter-column spacing in pixels.
	DefaultGutter = 12.0

	// DefaultSeed is the default random seed for the plateau escape.
	DefaultSeed = uint64(42)
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input
	Items []gallery.Item `json:"items"`

	// Layout options
	ContainerWidth float64 `json:"container_width,omitempty"`
	Columns        int     `json:"columns,omitempty"` // 0 means derive from ContainerWidth
	Gutter         float64 `json:"gutter,omitempty"`

	// Partition tuning
	TargetVariation float64 `json:"target_variation,omitempty"`
	MaxIterations   int     `json:"max_iterations,omitempty"`
	Randomize       bool    `json:"randomize,omitempty"` // enable the seeded plateau escape
	Seed            uint64  `json:"seed,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Stats   bool     `json:"stats,omitempty"`

	// Refresh bypasses the cache on read (results are still written back).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Feed is the normalized input feed.
	Feed gallery.Feed

	// FeedHash is the content hash of the normalized feed.
	FeedHash string

	// ColumnSet is the materialized layout.
	ColumnSet render.ColumnSet

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and quality information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount     int
	ColumnCount   int
	Variation     float64
	Iterations    int
	TargetMet     bool
	EstimateTime  time.Duration
	PartitionTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the column set came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg)", format)
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

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.ContainerWidth == 0 {
		o.ContainerWidth = DefaultContainerWidth
	}
	if o.Columns == 0 {
		o.Columns = layout.ColumnsForWidth(nil, o.ContainerWidth)
	}
	if o.Gutter == 0 {
		o.Gutter = DefaultGutter
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ColumnWidth returns the per-column width implied by the options.
func (o *Options) ColumnWidth() float64 {
	return layout.ColumnWidthFor(o.ContainerWidth, o.Columns, o.Gutter)
}

// PartitionOptions returns the partitioner tuning implied by the options.
func (o *Options) PartitionOptions() partition.Options {
	popts := partition.Options{
		TargetVariation: o.TargetVariation,
		MaxIterations:   o.MaxIterations,
	}
	if o.Randomize {
		popts.Rand = newSeededRand(o.Seed)
	}
	return popts
}

// LayoutKeyOpts returns cache key options for the partition stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Columns:         o.Columns,
		ColumnWidth:     o.ColumnWidth(),
		TargetVariation: o.TargetVariation,
		MaxIterations:   o.MaxIterations,
		Randomize:       o.Randomize,
		Seed:            o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Labels: o.Labels,
		Stats:  o.Stats,
	}
}
