// Package layout owns the reactive lifecycle of a gallery layout: it tracks
// the current column count (derived from container width through a
// breakpoint table), re-runs the partitioner when the column count, item
// set, or item heights change, and hands the resulting column assignment to
// a consumer callback.
//
// The controller always re-partitions from the canonical item order (the
// stable first-seen order), never from the previous assignment. That
// discards earlier partial optimizations but makes every layout a pure
// function of (item set, heights, column count) - reproducible across
// reloads and trivially testable. Incremental repair of an existing
// assignment is deliberately not attempted; at gallery scale a full
// re-partition is far below a frame budget.
//
// One controller instance is owned by whichever component mounts the
// gallery view and is discarded with it. Resize signals are debounced so a
// continuous drag collapses into a single re-layout.
package layout
