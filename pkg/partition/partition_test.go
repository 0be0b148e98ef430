package partition

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/matzehuels/masonry/pkg/errors"
)

func entriesOf(heights ...float64) []Entry {
	entries := make([]Entry, len(heights))
	for i, h := range heights {
		entries[i] = Entry{ID: string(rune('a' + i)), Height: h}
	}
	return entries
}

func TestPartitionInvalidColumnCount(t *testing.T) {
	for _, k := range []int{0, -1} {
		_, err := Partition(entriesOf(100, 200), k, Options{})
		if !errors.Is(err, errors.ErrCodeInvalidColumnCount) {
			t.Errorf("Partition(k=%d) error = %v, want INVALID_COLUMN_COUNT", k, err)
		}
	}
}

func TestPartitionEmpty(t *testing.T) {
	res, err := Partition(nil, 3, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(res.Assignment) != 0 {
		t.Errorf("assignment = %v, want empty", res.Assignment)
	}
	if len(res.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(res.Columns))
	}
	for c, col := range res.Columns {
		if len(col) != 0 {
			t.Errorf("column %d = %v, want empty", c, col)
		}
	}
	if res.Variation != 0 {
		t.Errorf("variation = %v, want 0", res.Variation)
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", res.Iterations)
	}
}

func TestPartitionSingleColumn(t *testing.T) {
	entries := entriesOf(800, 100, 350, 220)

	res, err := Partition(entries, 1, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if res.Variation != 0 {
		t.Errorf("variation = %v, want 0 for single column", res.Variation)
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", res.Iterations)
	}

	// All items land in column 0 in original order.
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(res.Columns[0], want) {
		t.Errorf("column 0 = %v, want %v", res.Columns[0], want)
	}
}

func TestPartitionEqualHeights(t *testing.T) {
	// 6 x 300 across 3 columns: seed already yields [600 600 600].
	res, err := Partition(entriesOf(300, 300, 300, 300, 300, 300), 3, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if res.Variation != 0 {
		t.Errorf("variation = %v, want 0", res.Variation)
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0 (seed already optimal)", res.Iterations)
	}
	for c, h := range res.Heights {
		if h != 600 {
			t.Errorf("column %d height = %v, want 600", c, h)
		}
	}
}

func TestPartitionDominantItem(t *testing.T) {
	// One 800 item against four 100s in two columns. The greedy seed gives
	// [800] vs [400] = 50% variation, and no exchange can reach the default
	// 9% target: best achievable is 800 vs 400. The partitioner must report
	// the degraded result honestly instead of claiming success.
	res, err := Partition(entriesOf(800, 100, 100, 100, 100), 2, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if res.TargetMet {
		t.Error("TargetMet = true, want false for unreachable target")
	}
	if res.Variation < 50.0-1e-9 {
		t.Errorf("variation = %v, want >= 50 (claimed better than optimum)", res.Variation)
	}
	// Must not be worse than the greedy seed either.
	if res.Variation > 50.0+1e-9 {
		t.Errorf("variation = %v, want <= 50 (worse than seed)", res.Variation)
	}
}

func TestPartitionImprovesOverSeed(t *testing.T) {
	// The greedy walk lands at [700, 500] (~28.6% variation); exchanging
	// the 500 and 400 items yields [600, 600], so refinement must run and
	// reach the target.
	entries := []Entry{
		{ID: "a", Height: 500},
		{ID: "b", Height: 100},
		{ID: "c", Height: 400},
		{ID: "d", Height: 200},
	}

	res, err := Partition(entries, 2, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if !res.TargetMet {
		t.Errorf("TargetMet = false, variation = %v", res.Variation)
	}
	if res.Iterations == 0 {
		t.Error("iterations = 0, expected refinement to run")
	}
	if res.Variation > 9.0 {
		t.Errorf("variation = %v, want <= 9", res.Variation)
	}
}

func TestPartitionConservation(t *testing.T) {
	heights := []float64{312, 417, 160, 800, 541, 233, 150, 672, 389, 294, 505, 188}
	entries := entriesOf(heights...)

	for _, k := range []int{1, 2, 3, 4, 5} {
		res, err := Partition(entries, k, Options{})
		if err != nil {
			t.Fatalf("Partition(k=%d): %v", k, err)
		}

		if len(res.Assignment) != len(entries) {
			t.Errorf("k=%d: assignment size = %d, want %d", k, len(res.Assignment), len(entries))
		}

		seen := make(map[string]int)
		for c, col := range res.Columns {
			for _, id := range col {
				seen[id]++
				if res.Assignment[id] != c {
					t.Errorf("k=%d: item %s in column %d but assignment says %d", k, id, c, res.Assignment[id])
				}
			}
		}
		for _, e := range entries {
			if seen[e.ID] != 1 {
				t.Errorf("k=%d: item %s appears %d times, want exactly once", k, e.ID, seen[e.ID])
			}
		}
	}
}

func TestPartitionMonotonicImprovement(t *testing.T) {
	heights := []float64{623, 150, 744, 388, 291, 515, 180, 467, 702, 256}
	entries := entriesOf(heights...)

	for _, k := range []int{2, 3, 4} {
		seed := greedyVariation(heights, k)
		res, err := Partition(entries, k, Options{})
		if err != nil {
			t.Fatalf("Partition(k=%d): %v", k, err)
		}
		if res.Variation > seed+1e-9 {
			t.Errorf("k=%d: variation %v worse than greedy seed %v", k, res.Variation, seed)
		}
	}
}

// greedyVariation reimplements the seed independently for comparison.
func greedyVariation(heights []float64, k int) float64 {
	cols := make([]float64, k)
	for _, h := range heights {
		target := 0
		for c := 1; c < k; c++ {
			if cols[c] < cols[target] {
				target = c
			}
		}
		cols[target] += h
	}
	maxH, minH := cols[0], cols[0]
	for _, h := range cols[1:] {
		maxH = math.Max(maxH, h)
		minH = math.Min(minH, h)
	}
	if maxH <= 0 {
		return 0
	}
	return (maxH - minH) / maxH * 100
}

func TestPartitionDeterminism(t *testing.T) {
	heights := []float64{312, 417, 160, 800, 541, 233, 150, 672}
	entries := entriesOf(heights...)

	first, err := Partition(entries, 3, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	for i := 0; i < 5; i++ {
		res, err := Partition(entries, 3, Options{})
		if err != nil {
			t.Fatalf("Partition: %v", err)
		}
		if !reflect.DeepEqual(res.Assignment, first.Assignment) {
			t.Fatalf("run %d: assignment differs: %v vs %v", i, res.Assignment, first.Assignment)
		}
		if res.Variation != first.Variation {
			t.Fatalf("run %d: variation differs: %v vs %v", i, res.Variation, first.Variation)
		}
	}
}

func TestPartitionSeededRandomIsReproducible(t *testing.T) {
	heights := []float64{800, 790, 150, 160, 155, 805, 152, 798, 161, 149}
	entries := entriesOf(heights...)

	opts := func() Options {
		return Options{Rand: rand.New(rand.NewSource(7)), MaxIterations: 60}
	}

	first, err := Partition(entries, 3, opts())
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	second, err := Partition(entries, 3, opts())
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if !reflect.DeepEqual(first.Assignment, second.Assignment) {
		t.Error("same seed produced different assignments")
	}
}

func TestPartitionSanitizesDegenerateHeights(t *testing.T) {
	entries := []Entry{
		{ID: "a", Height: math.NaN()},
		{ID: "b", Height: math.Inf(1)},
		{ID: "c", Height: -50},
		{ID: "d", Height: 0},
		{ID: "e", Height: 300},
	}

	res, err := Partition(entries, 2, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if math.IsNaN(res.Variation) || math.IsInf(res.Variation, 0) {
		t.Errorf("variation = %v, not finite", res.Variation)
	}
	for c, h := range res.Heights {
		if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
			t.Errorf("column %d height = %v, not sane", c, h)
		}
	}
}

func TestPartitionIterationBudget(t *testing.T) {
	// An adversarial input that cannot reach an impossible target; the loop
	// must stop at the plateau or the budget, never spin.
	heights := make([]float64, 40)
	for i := range heights {
		heights[i] = float64(150 + 37*i%650)
	}
	entries := entriesOf(heights...)

	res, err := Partition(entries, 4, Options{TargetVariation: 0.0001, MaxIterations: 50})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if res.Iterations > 50 {
		t.Errorf("iterations = %d, exceeds budget 50", res.Iterations)
	}
}

func TestPartitionRenderOrderIsSeedOrder(t *testing.T) {
	// With equal heights, no refinement runs and each column holds its
	// items in the order the greedy pass appended them.
	res, err := Partition(entriesOf(300, 300, 300, 300, 300, 300), 3, Options{})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	want := [][]string{{"a", "d"}, {"b", "e"}, {"c", "f"}}
	if !reflect.DeepEqual(res.Columns, want) {
		t.Errorf("columns = %v, want %v", res.Columns, want)
	}
}
