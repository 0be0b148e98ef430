package estimate

import (
	"math"
	"math/rand"
	"testing"
)

func TestEstimateWithIntrinsicRatio(t *testing.T) {
	e := New()

	tests := []struct {
		name        string
		ratio       float64
		columnWidth float64
		want        float64
	}{
		{"Landscape", 1.5, 300, 300/1.5 + DefaultPadding},
		{"Square", 1.0, 300, 300 + DefaultPadding},
		{"PortraitClampedHigh", 0.2, 300, DefaultMaxHeight},
		{"PanoramaClampedLow", 10.0, 300, DefaultMinHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Estimate("item", tt.ratio, tt.columnWidth)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Estimate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateDegenerateInputs(t *testing.T) {
	e := New()

	for _, ratio := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		got := e.Estimate("item", ratio, 300)
		if got < DefaultMinHeight || got > DefaultMaxHeight {
			t.Errorf("Estimate(ratio=%v) = %v, outside clamp bounds", ratio, got)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("Estimate(ratio=%v) = %v, not finite", ratio, got)
		}
	}

	// Zero column width must still produce a positive, finite height.
	if got := e.Estimate("item", 1.5, 0); got != DefaultMinHeight {
		t.Errorf("Estimate(width=0) = %v, want %v", got, DefaultMinHeight)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	e := New()

	first := e.Estimate("photo-42", 0, 300)
	for i := 0; i < 10; i++ {
		if got := e.Estimate("photo-42", 0, 300); got != first {
			t.Fatalf("fallback estimate changed between calls: %v vs %v", got, first)
		}
	}

	// A second estimator must agree - the selector is the item ID, not
	// process state.
	if got := New().Estimate("photo-42", 0, 300); got != first {
		t.Errorf("fallback differs across estimators: %v vs %v", got, first)
	}
}

func TestFallbackCoversTable(t *testing.T) {
	e := New()

	// Across many IDs the hash selector should hit more than one shape.
	seen := make(map[float64]bool)
	for i := 0; i < 200; i++ {
		seen[e.Estimate(string(rune('a'+i%26))+string(rune('0'+i/26)), 0, 300)] = true
	}
	if len(seen) < 2 {
		t.Errorf("fallback produced %d distinct heights, want at least 2", len(seen))
	}
}

func TestWithRandom(t *testing.T) {
	e := New(WithRandom(rand.New(rand.NewSource(1))))

	got := e.Estimate("x", 0, 300)
	if got < DefaultMinHeight || got > DefaultMaxHeight {
		t.Errorf("random fallback = %v, outside clamp bounds", got)
	}

	// Seeded rng makes the sequence reproducible.
	e2 := New(WithRandom(rand.New(rand.NewSource(1))))
	if got2 := e2.Estimate("x", 0, 300); got2 != got {
		t.Errorf("same seed produced different estimates: %v vs %v", got2, got)
	}
}

func TestWithBoundsAndPadding(t *testing.T) {
	e := New(WithBounds(10, 5000), WithPadding(0))

	if got := e.Estimate("item", 1.0, 300); got != 300 {
		t.Errorf("Estimate() = %v, want 300 with zero padding", got)
	}
	if got := e.Estimate("item", 100, 300); got != 10 {
		t.Errorf("Estimate() = %v, want custom min 10", got)
	}
}
