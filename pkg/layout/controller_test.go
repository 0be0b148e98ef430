package layout

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/render"
)

// syncController builds a controller with debouncing disabled and a layout
// counter, so every state change is observable deterministically.
func syncController(t *testing.T, opts ...Option) (*Controller, *int, *render.ColumnSet) {
	t.Helper()
	var (
		layouts int
		last    render.ColumnSet
	)
	opts = append([]Option{
		WithDebounce(0),
		OnLayout(func(cs render.ColumnSet) {
			layouts++
			last = cs
		}),
	}, opts...)
	c := New(opts...)
	t.Cleanup(c.Close)
	return c, &layouts, &last
}

func testItems(ids ...string) []gallery.Item {
	items := make([]gallery.Item, len(ids))
	for i, id := range ids {
		items[i] = gallery.Item{ID: id, OriginalIndex: i, AspectRatio: 1.5}
	}
	return items
}

func TestControllerLifecycle(t *testing.T) {
	c, layouts, last := syncController(t)

	if got := c.State(); got != StateIdle {
		t.Fatalf("fresh controller state = %v, want %v", got, StateIdle)
	}

	if err := c.SetItems(testItems("a", "b", "c", "d")); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	if got := c.State(); got != StateReconciled {
		t.Fatalf("state after SetItems = %v, want %v", got, StateReconciled)
	}
	if *layouts != 1 {
		t.Fatalf("layouts = %d, want 1", *layouts)
	}
	// No viewport signal yet: the floor count applies.
	if got := c.ColumnCount(); got != 2 {
		t.Fatalf("ColumnCount before resize = %d, want 2", got)
	}

	c.Resize(1300)
	if got := c.ColumnCount(); got != 4 {
		t.Fatalf("ColumnCount at width 1300 = %d, want 4", got)
	}
	if *layouts != 2 {
		t.Fatalf("layouts after resize = %d, want 2", *layouts)
	}
	if last.ColumnCount != 4 {
		t.Fatalf("emitted ColumnCount = %d, want 4", last.ColumnCount)
	}
	if got := last.ItemCount(); got != 4 {
		t.Fatalf("emitted ItemCount = %d, want 4", got)
	}

	asn := c.Assignment()
	if len(asn) != 4 {
		t.Fatalf("assignment size = %d, want 4", len(asn))
	}
	for id, col := range asn {
		if col < 0 || col >= 4 {
			t.Errorf("item %q assigned to column %d, want 0..3", id, col)
		}
	}
}

func TestControllerEmptyFeed(t *testing.T) {
	c, layouts, last := syncController(t)
	c.Resize(1300)

	if err := c.SetItems(nil); err != nil {
		t.Fatalf("SetItems(nil): %v", err)
	}
	if c.State() != StateReconciled {
		t.Fatalf("state = %v, want %v", c.State(), StateReconciled)
	}
	if *layouts != 2 {
		t.Fatalf("layouts = %d, want 2", *layouts)
	}
	if last.ColumnCount != 4 || last.ItemCount() != 0 {
		t.Fatalf("empty feed emitted %d columns with %d items, want 4 empty columns",
			last.ColumnCount, last.ItemCount())
	}
	if v := c.Variation(); v != 0 {
		t.Fatalf("variation for empty feed = %v, want 0", v)
	}
}

func TestControllerAddAssignsSequentialIndices(t *testing.T) {
	c, _, _ := syncController(t)

	if err := c.SetItems(testItems("a", "b")); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	// An index on the descriptor is ignored; first-seen order rules.
	if err := c.Add(gallery.Item{ID: "c", OriginalIndex: 99, AspectRatio: 1.0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(gallery.Item{ID: "d", AspectRatio: 1.0}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	items := c.Items()
	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	for _, it := range items {
		if want[it.ID] != it.OriginalIndex {
			t.Errorf("item %q has OriginalIndex %d, want %d", it.ID, it.OriginalIndex, want[it.ID])
		}
	}
}

func TestControllerRemoveKeepsIndices(t *testing.T) {
	c, layouts, _ := syncController(t)

	if err := c.SetItems(testItems("a", "b", "c", "d")); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	before := *layouts

	c.Remove("b")
	if *layouts != before+1 {
		t.Fatalf("layouts after remove = %d, want %d", *layouts, before+1)
	}

	// Survivors keep their first-seen indices; nothing is renumbered.
	items := c.Items()
	want := []struct {
		id    string
		index int
	}{{"a", 0}, {"c", 2}, {"d", 3}}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].ID != w.id || items[i].OriginalIndex != w.index {
			t.Errorf("item %d = {%q, %d}, want {%q, %d}",
				i, items[i].ID, items[i].OriginalIndex, w.id, w.index)
		}
	}

	// A later addition continues after the highest index ever seen.
	if err := c.Add(gallery.Item{ID: "e", AspectRatio: 1.0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	items = c.Items()
	if got := items[len(items)-1].OriginalIndex; got != 4 {
		t.Errorf("new item index = %d, want 4", got)
	}

	// Unknown IDs are a no-op and do not trigger a layout pass.
	before = *layouts
	c.Remove("nope")
	if *layouts != before {
		t.Errorf("layouts after no-op remove = %d, want %d", *layouts, before)
	}
}

func TestControllerMeasuredHeightThreshold(t *testing.T) {
	c, layouts, _ := syncController(t)

	if err := c.SetItems(testItems("a", "b", "c", "d")); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	c.Resize(1300)
	before := *layouts

	var est float64
	for _, it := range c.Items() {
		if it.ID == "a" {
			est = it.BestHeight()
		}
	}
	if est <= 0 {
		t.Fatalf("item a has no height estimate")
	}

	// A small correction is recorded but does not move anything.
	c.SetMeasuredHeight("a", est*1.05)
	if *layouts != before {
		t.Fatalf("layouts after small correction = %d, want %d", *layouts, before)
	}
	for _, it := range c.Items() {
		if it.ID == "a" && it.MeasuredHeight == 0 {
			t.Fatal("small correction was not recorded")
		}
	}

	// A material correction re-balances.
	c.SetMeasuredHeight("a", est*3)
	if *layouts != before+1 {
		t.Fatalf("layouts after material correction = %d, want %d", *layouts, before+1)
	}

	// Degenerate measurements are dropped entirely.
	c.SetMeasuredHeight("a", -10)
	c.SetMeasuredHeight("a", 0)
	if *layouts != before+1 {
		t.Fatalf("layouts after degenerate measurements = %d, want %d", *layouts, before+1)
	}
	for _, it := range c.Items() {
		if it.ID == "a" && it.MeasuredHeight != est*3 {
			t.Errorf("measured height = %v, want %v", it.MeasuredHeight, est*3)
		}
	}
}

func TestControllerInvalidBreakpointKeepsAssignment(t *testing.T) {
	table := []Breakpoint{
		{MinWidth: 1000, Columns: 100}, // out of range
		{MinWidth: 0, Columns: 3},
	}
	c, layouts, _ := syncController(t, WithBreakpoints(table))

	c.Resize(800)
	if err := c.SetItems(testItems("a", "b", "c")); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	prev := c.Assignment()
	before := *layouts

	c.Resize(1200)
	if *layouts != before {
		t.Fatalf("layouts after refused resize = %d, want %d", *layouts, before)
	}
	got := c.Assignment()
	if len(got) != len(prev) {
		t.Fatalf("assignment size changed: %d -> %d", len(prev), len(got))
	}
	for id, col := range prev {
		if got[id] != col {
			t.Errorf("item %q moved from column %d to %d", id, col, got[id])
		}
	}
}

func TestControllerDebounceCoalescesResizes(t *testing.T) {
	var layouts atomic.Int32
	c := New(
		WithDebounce(20*time.Millisecond),
		OnLayout(func(render.ColumnSet) { layouts.Add(1) }),
	)
	defer c.Close()

	// SetItems lays out immediately; only resize signals are debounced.
	if err := c.SetItems(testItems("a", "b", "c", "d")); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	if got := layouts.Load(); got != 1 {
		t.Fatalf("layouts after SetItems = %d, want 1", got)
	}

	// A burst of resize signals collapses into one pass at the last width.
	c.Resize(700)
	c.Resize(1000)
	c.Resize(1300)
	if got := layouts.Load(); got != 1 {
		t.Fatalf("layout ran before quiet period elapsed (layouts = %d)", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for layouts.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := layouts.Load(); got != 2 {
		t.Fatalf("layouts after quiet period = %d, want 2", got)
	}
	if got := c.ColumnCount(); got != 4 {
		t.Fatalf("ColumnCount = %d, want 4 (last width wins)", got)
	}
}

func TestControllerCloseCancelsPendingResize(t *testing.T) {
	var layouts atomic.Int32
	c := New(
		WithDebounce(20*time.Millisecond),
		OnLayout(func(render.ColumnSet) { layouts.Add(1) }),
	)

	if err := c.SetItems(testItems("a", "b")); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	c.Resize(1300)
	c.Close()

	time.Sleep(60 * time.Millisecond)
	if got := layouts.Load(); got != 1 {
		t.Fatalf("layouts after Close = %d, want 1 (pending resize cancelled)", got)
	}
}

func TestControllerSetItemsValidates(t *testing.T) {
	c, layouts, _ := syncController(t)

	err := c.SetItems([]gallery.Item{{ID: "", AspectRatio: 1.0}})
	if err == nil {
		t.Fatal("expected validation error for empty ID")
	}
	if *layouts != 0 {
		t.Fatalf("layouts after rejected SetItems = %d, want 0", *layouts)
	}
	if got := c.State(); got != StateIdle {
		t.Fatalf("state after rejected SetItems = %v, want %v", got, StateIdle)
	}
}
