// Package pkg provides the core libraries for Masonry gallery layout.
//
// # Overview
//
// Masonry turns an ordered photo feed into a balanced multi-column layout:
// every item keeps its feed position in reading order while column heights
// stay within a small variation of each other. The pkg directory is split
// into domain logic, infrastructure, and orchestration:
//
//  1. Domain - feed model, height estimation, partitioning, rendering
//  2. Infrastructure - caching, persistence, configuration, observability
//  3. Orchestration - the pipeline and the reactive layout controller
//
// # Architecture
//
// The typical data flow through Masonry:
//
//	Photo Feed (JSON)
//	         ↓
//	    [gallery] package (normalize items, canonical order)
//	         ↓
//	    [estimate] package (aspect ratio → pixel height)
//	         ↓
//	    [partition] package (greedy seed + bounded local search)
//	         ↓
//	    [render] package (column materialization)
//	         ↓
//	    JSON/SVG output
//
// # Quick Start
//
// Run the full pipeline against a feed:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/masonry/pkg/gallery"
//	    "github.com/matzehuels/masonry/pkg/pipeline"
//	)
//
//	feed, _ := gallery.ReadFeedFile("gallery.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Items:          feed.Items,
//	    ContainerWidth: 1200,
//	})
//
// Or drive layouts reactively from viewport events:
//
//	ctrl := layout.New(layout.OnLayout(func(cs render.ColumnSet) {
//	    // apply cs to the view
//	}))
//	defer ctrl.Close()
//	ctrl.SetItems(descriptors)
//	ctrl.Resize(1300)
//
// # Main Packages
//
// [gallery] - Feed model: items with stable IDs, original indices, and
// aspect ratios. Normalization enforces canonical order.
//
// [estimate] - Height estimation from aspect ratios with a deterministic
// fallback for items missing dimension data.
//
// [partition] - Balanced column assignment. A greedy height-sorted seed is
// refined by bounded local search until the column height variation meets
// the target or the iteration budget runs out.
//
// [render] - Materializes a partition into ordered columns and serializes
// the result to JSON or a diagnostic SVG.
//
// [layout] - The reactive controller: breakpoint resolution, debounced
// resize handling, incremental add/remove, and measured-height reflow.
//
// [pipeline] - One-shot orchestration of estimate → partition → render with
// caching, used by the CLI and the HTTP service.
//
// [cache] - Layout and artifact caching with file, Redis, and null backends.
//
// [store] - Persistence for named layouts (memory and MongoDB backends).
//
// [config] - TOML configuration shared by the CLI and the service.
//
// [errors] - Structured error codes and validation helpers.
//
// [observability] - Pluggable hooks for pipeline, cache, and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/partition/...  # Specific package
//	go test -run Example         # Examples only
//
// [gallery]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/gallery
// [estimate]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/estimate
// [partition]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/partition
// [render]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/render
// [layout]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/observability
package pkg
