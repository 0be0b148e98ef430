package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/estimate"
	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/partition"
	"github.com/matzehuels/masonry/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, estimator, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Estimator *estimate.Estimator
	Logger    *log.Logger
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
		Cache:     c,
		Keyer:     keyer,
		Estimator: estimate.New(),
		Logger:    logger,
	}
}

// Execute runs the complete estimate → partition → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Estimate
	feed := gallery.Feed{Items: opts.Items}
	if err := feed.Normalize(); err != nil {
		return nil, fmt.Errorf("normalize feed: %w", err)
	}

	estimateStart := time.Now()
	r.EstimateHeights(ctx, feed.Items, opts)
	result.Stats.EstimateTime = time.Since(estimateStart)
	result.Stats.ItemCount = len(feed.Items)
	result.Feed = feed

	// The feed hash covers IDs, order, and height signals, so it changes
	// whenever a re-partition could produce a different answer.
	if feedData, err := gallery.MarshalFeed(feed); err == nil {
		result.FeedHash = cache.Hash(feedData)
	}

	r.Logger.Info("estimated heights",
		"items", len(feed.Items),
		"column_width", opts.ColumnWidth(),
		"duration", result.Stats.EstimateTime)

	// Stage 2: Partition
	partitionStart := time.Now()
	cs, layoutHit, err := r.PartitionWithCacheInfo(ctx, feed, result.FeedHash, opts)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	result.ColumnSet = cs
	result.Stats.PartitionTime = time.Since(partitionStart)
	result.Stats.ColumnCount = cs.ColumnCount
	result.Stats.Variation = cs.Variation
	result.Stats.Iterations = cs.Iterations
	result.Stats.TargetMet = cs.TargetMet
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("partitioned items",
		"columns", cs.ColumnCount,
		"variation", cs.Variation,
		"iterations", cs.Iterations,
		"cached", layoutHit,
		"duration", result.Stats.PartitionTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, cs, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// EstimateHeights fills in EstimatedHeight for every item at the column
// width implied by the options. Measured heights are left alone; they take
// precedence downstream anyway.
func (r *Runner) EstimateHeights(ctx context.Context, items []gallery.Item, opts Options) {
	opts.SetLayoutDefaults()
	columnWidth := opts.ColumnWidth()

	observability.Pipeline().OnEstimateStart(ctx, len(items), columnWidth)
	start := time.Now()
	for i := range items {
		items[i].EstimatedHeight = r.Estimator.Estimate(items[i].ID, items[i].AspectRatio, columnWidth)
	}
	observability.Pipeline().OnEstimateComplete(ctx, len(items), time.Since(start))
}

// PartitionWithCacheInfo distributes the feed across columns with caching
// and returns cache hit info.
func (r *Runner) PartitionWithCacheInfo(ctx context.Context, feed gallery.Feed, feedHash string, opts Options) (render.ColumnSet, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(feedHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh && feedHash != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cs, err := render.UnmarshalColumnSet(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cs, true, nil
			}
			// Corrupt entry: fall through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	// Partition
	entries := make([]partition.Entry, len(feed.Items))
	for i, it := range feed.Items {
		entries[i] = partition.Entry{ID: it.ID, Height: it.BestHeight()}
	}

	observability.Pipeline().OnPartitionStart(ctx, len(entries), opts.Columns)
	start := time.Now()
	res, err := partition.Partition(entries, opts.Columns, opts.PartitionOptions())
	observability.Pipeline().OnPartitionComplete(ctx, opts.Columns, res.Variation, res.Iterations, time.Since(start), err)
	if err != nil {
		return render.ColumnSet{}, false, err
	}

	cs := render.Materialize(res, feed.Items, opts.ColumnWidth())

	// Cache the result
	if feedHash != "" {
		if data, err := render.MarshalColumnSet(cs); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return cs, false, nil
}

// Partition is a convenience wrapper that discards the cache hit info.
func (r *Runner) Partition(ctx context.Context, feed gallery.Feed, feedHash string, opts Options) (render.ColumnSet, error) {
	cs, _, err := r.PartitionWithCacheInfo(ctx, feed, feedHash, opts)
	return cs, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, cs render.ColumnSet, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Key artifacts by the column set they were rendered from.
	csData, err := render.MarshalColumnSet(cs)
	if err != nil {
		return nil, false, fmt.Errorf("serialize column set for cache key: %w", err)
	}
	layoutHash := cache.Hash(csData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Render all formats
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderArtifacts(cs, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, cs render.ColumnSet, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, cs, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// newSeededRand builds the partitioner's escape source from a seed.
func newSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}
