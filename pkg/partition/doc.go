// Package partition assigns ordered items to columns so that column heights
// come out as equal as possible.
//
// Finding the true minimum-max-height assignment is the NP-hard balanced
// multiway partition problem, so the package uses the standard heuristic
// treatment: a greedy shortest-column seed followed by bounded local-search
// refinement (pairwise exchanges, single-item moves, and an optional seeded
// random escape near the end of the budget). At gallery scale - tens to low
// hundreds of items across 2-5 columns - this lands within a few percent of
// optimal in well under a millisecond.
//
// The quality metric throughout is the relative variation between the
// tallest and shortest column:
//
//	variation = (max - min) / max * 100
//
// Refinement never returns a result worse than the greedy seed: the best
// assignment seen is tracked across all iterations, including any random
// escapes that regress.
package partition
