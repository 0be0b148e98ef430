package partition

import (
	"math"
	"math/rand"

	"github.com/matzehuels/masonry/pkg/errors"
)

// Defaults for the refinement loop.
const (
	// DefaultTargetVariation is the variation percentage at which a layout
	// is considered visually balanced and refinement stops.
	DefaultTargetVariation = 9.0

	// DefaultMaxIterations bounds the refinement loop. The cap is on
	// iterations, not wall time, so a single invocation has a hard upper
	// bound on work regardless of input.
	DefaultMaxIterations = 120

	// escapePhase is the fraction of the budget that must be spent before
	// random escape swaps are attempted.
	escapePhase = 0.7

	// minSaneHeight replaces non-positive or non-finite input heights.
	// Upstream estimators clamp already; this keeps the variation metric
	// finite even if a caller bypasses them.
	minSaneHeight = 1.0
)

// Entry is one item to partition: a stable ID and its best-known height.
type Entry struct {
	ID     string
	Height float64
}

// Options tunes the partitioner.
type Options struct {
	// TargetVariation is the stop threshold in percent. Zero means
	// DefaultTargetVariation.
	TargetVariation float64

	// MaxIterations bounds refinement. Zero means DefaultMaxIterations.
	MaxIterations int

	// Rand enables the random escape step near the end of the budget.
	// Leave nil for fully deterministic output (tests, reproducible
	// layouts).
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.TargetVariation <= 0 {
		o.TargetVariation = DefaultTargetVariation
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Result is a computed column assignment.
type Result struct {
	// Assignment maps item ID to column index.
	Assignment map[string]int

	// Columns holds per-column item IDs in render order: the order items
	// were inserted into the column during the greedy pass, with later
	// swaps and moves exchanging membership in place.
	Columns [][]string

	// Heights holds the final column heights.
	Heights []float64

	// Variation is the achieved variation percentage.
	Variation float64

	// Iterations is the number of refinement iterations consumed.
	// Zero when the greedy seed already met the target.
	Iterations int

	// TargetMet reports whether Variation is at or below the target.
	// A false value is a degraded-quality result, not a failure.
	TargetMet bool
}

// Partition assigns items to k columns, minimizing height variation.
//
// Items are processed in the given order; callers wanting reproducible
// output must pass the canonical item order, not a previous assignment.
// Returns an INVALID_COLUMN_COUNT error for k <= 0; an empty item list is
// a valid trivial case.
func Partition(entries []Entry, k int, opts Options) (Result, error) {
	if err := errors.ValidateColumnCount(k); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	heights := sanitizeHeights(entries)

	s := newState(len(entries), k, heights)
	s.greedySeed()

	if len(entries) > 0 && k > 1 && s.variation() > opts.TargetVariation {
		s.refine(opts)
	}

	return s.result(entries, opts.TargetVariation), nil
}

// sanitizeHeights copies entry heights, replacing anything non-positive or
// non-finite with minSaneHeight.
func sanitizeHeights(entries []Entry) []float64 {
	heights := make([]float64, len(entries))
	for i, e := range entries {
		h := e.Height
		if !(h > 0) || math.IsNaN(h) || math.IsInf(h, 0) {
			h = minSaneHeight
		}
		heights[i] = h
	}
	return heights
}

// state is the working representation: item indices per column plus running
// column heights. All refinement operates on indices; IDs are only attached
// at the end.
type state struct {
	cols       [][]int // column -> entry indices in insertion order
	colHeights []float64
	col        []int     // entry index -> column
	heights    []float64 // entry index -> height
	iterations int

	bestCols      [][]int
	bestVariation float64
}

func newState(n, k int, heights []float64) *state {
	s := &state{
		cols:       make([][]int, k),
		colHeights: make([]float64, k),
		col:        make([]int, n),
		heights:    heights,
	}
	for c := range s.cols {
		s.cols[c] = []int{}
	}
	return s
}

// greedySeed assigns each item in order to the currently shortest column,
// ties broken by the lowest column index.
func (s *state) greedySeed() {
	for i := range s.col {
		target := 0
		for c := 1; c < len(s.cols); c++ {
			if s.colHeights[c] < s.colHeights[target] {
				target = c
			}
		}
		s.place(i, target)
	}
	s.snapshot()
}

func (s *state) place(i, c int) {
	s.cols[c] = append(s.cols[c], i)
	s.colHeights[c] += s.heights[i]
	s.col[i] = c
}

// variation returns the current (max-min)/max percentage.
func (s *state) variation() float64 {
	return variationOf(s.colHeights)
}

func variationOf(heights []float64) float64 {
	if len(heights) == 0 {
		return 0
	}
	maxH, minH := heights[0], heights[0]
	for _, h := range heights[1:] {
		if h > maxH {
			maxH = h
		}
		if h < minH {
			minH = h
		}
	}
	if maxH <= 0 {
		return 0
	}
	return (maxH - minH) / maxH * 100
}

// snapshot records the current assignment as the best seen so far.
func (s *state) snapshot() {
	s.bestVariation = s.variation()
	s.bestCols = make([][]int, len(s.cols))
	for c, col := range s.cols {
		s.bestCols[c] = append([]int(nil), col...)
	}
}

// maybeSnapshot records the current assignment if it beats the best.
func (s *state) maybeSnapshot() {
	if s.variation() < s.bestVariation {
		s.snapshot()
	}
}

// result converts the best assignment found into the public Result.
func (s *state) result(entries []Entry, target float64) Result {
	r := Result{
		Assignment: make(map[string]int, len(entries)),
		Columns:    make([][]string, len(s.cols)),
		Heights:    make([]float64, len(s.cols)),
		Variation:  s.bestVariation,
		Iterations: s.iterations,
	}
	for c, col := range s.bestCols {
		ids := make([]string, len(col))
		var h float64
		for i, idx := range col {
			ids[i] = entries[idx].ID
			r.Assignment[entries[idx].ID] = c
			h += s.heights[idx]
		}
		r.Columns[c] = ids
		r.Heights[c] = h
	}
	r.TargetMet = r.Variation <= target
	return r
}
