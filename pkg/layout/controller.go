package layout

import (
	"io"
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/estimate"
	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/partition"
	"github.com/matzehuels/masonry/pkg/render"
)

// State identifies where the controller is in its layout cycle.
type State int

const (
	// StateIdle means no layout has been requested yet.
	StateIdle State = iota
	// StateEstimating means item heights are being (re)computed.
	StateEstimating
	// StatePartitioning means the partitioner is running.
	StatePartitioning
	// StateReconciled means the latest assignment has been applied and
	// emitted.
	StateReconciled
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEstimating:
		return "estimating"
	case StatePartitioning:
		return "partitioning"
	case StateReconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// Defaults for controller tuning.
const (
	// DefaultDebounce is the quiet period for coalescing resize signals.
	DefaultDebounce = 100 * time.Millisecond

	// DefaultGutter is the spacing assumed between columns when deriving
	// the per-column width from the container width.
	DefaultGutter = 12.0

	// DefaultRebalanceThreshold is the relative height delta above which a
	// reported measured height triggers a re-layout. Smaller corrections
	// are recorded but do not move anything, so a burst of image loads
	// cannot thrash the layout.
	DefaultRebalanceThreshold = 0.15
)

// Controller drives the estimate -> partition -> reconcile cycle for one
// gallery view. Create one per mounted view with New and discard it on
// teardown; it holds no global state.
//
// Methods are safe for concurrent use, but the intended model is a single
// owner delivering events (feed changes, resize signals, measured heights)
// from one event loop. The debounced resize path fires on a timer
// goroutine, which is why internal locking exists at all.
type Controller struct {
	mu sync.Mutex

	logger      *log.Logger
	estimator   *estimate.Estimator
	breakpoints []Breakpoint
	popts       partition.Options
	gutter      float64
	debounce    time.Duration
	threshold   float64
	onLayout    func(render.ColumnSet)

	state          State
	items          []gallery.Item // canonical order (by OriginalIndex)
	nextIndex      int            // next OriginalIndex to hand out
	containerWidth float64
	columnCount    int
	columnWidth    float64
	assignment     map[string]int
	lastVariation  float64
	resizeTimer    *time.Timer
	pendingWidth   float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithEstimator replaces the default height estimator.
func WithEstimator(e *estimate.Estimator) Option {
	return func(c *Controller) { c.estimator = e }
}

// WithBreakpoints replaces the default breakpoint table.
func WithBreakpoints(table []Breakpoint) Option {
	return func(c *Controller) { c.breakpoints = table }
}

// WithPartitionOptions tunes the partitioner (target, budget, random
// escape).
func WithPartitionOptions(opts partition.Options) Option {
	return func(c *Controller) { c.popts = opts }
}

// WithDebounce sets the resize quiet period. Zero or negative disables
// debouncing: Resize applies synchronously. Tests use this.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithGutter sets the inter-column gutter used to derive column width.
func WithGutter(g float64) Option {
	return func(c *Controller) { c.gutter = g }
}

// WithRebalanceThreshold sets the relative measured-height delta that
// triggers a re-layout. Zero keeps the default; a negative value
// re-balances on every measurement.
func WithRebalanceThreshold(t float64) Option {
	return func(c *Controller) { c.threshold = t }
}

// WithRandomEscape enables the partitioner's random plateau escape with the
// given seed. Without it layouts are fully deterministic.
func WithRandomEscape(seed uint64) Option {
	return func(c *Controller) { c.popts.Rand = rand.New(rand.NewSource(int64(seed))) }
}

// OnLayout registers the consumer callback invoked after every reconcile
// with the freshly materialized column set. The callback runs while the
// controller's internal lock is held; it must not call back into the
// controller.
func OnLayout(fn func(render.ColumnSet)) Option {
	return func(c *Controller) { c.onLayout = fn }
}

// New creates a controller for one gallery view.
func New(opts ...Option) *Controller {
	c := &Controller{
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		estimator: estimate.New(),
		gutter:    DefaultGutter,
		debounce:  DefaultDebounce,
		threshold: DefaultRebalanceThreshold,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ColumnCount returns the current column count (0 before the first resize).
func (c *Controller) ColumnCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.columnCount
}

// Variation returns the variation achieved by the last layout.
func (c *Controller) Variation() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastVariation
}

// Items returns a copy of the canonical item list.
func (c *Controller) Items() []gallery.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// SetItems replaces the whole item set, as on initial load. Items are
// ordered by OriginalIndex and the next first-seen index continues after
// the highest one present. Triggers a full re-layout.
func (c *Controller) SetItems(items []gallery.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b gallery.Item) int {
		return a.OriginalIndex - b.OriginalIndex
	})
	next := 0
	for _, it := range sorted {
		if err := it.Validate(); err != nil {
			return err
		}
		if it.OriginalIndex >= next {
			next = it.OriginalIndex + 1
		}
	}

	c.items = sorted
	c.nextIndex = next
	c.relayout("items replaced")
	return nil
}

// Add appends new items to the canonical list. Each gets the next
// first-seen index regardless of any index on the descriptor. Triggers a
// full re-partition - the local-search heuristic needs the complete set,
// so no incremental insertion is attempted.
func (c *Controller) Add(items ...gallery.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range items {
		it.OriginalIndex = c.nextIndex
		if err := it.Validate(); err != nil {
			return err
		}
		c.nextIndex++
		c.items = append(c.items, it)
	}
	c.relayout("items added")
	return nil
}

// Remove filters items out of the canonical list by ID. Remaining
// OriginalIndex values are not renumbered - first-seen order is an
// identity property, not a live index. Unknown IDs are ignored.
func (c *Controller) Remove(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(it gallery.Item) bool {
		_, gone := drop[it.ID]
		return gone
	})
	if len(c.items) != before {
		c.relayout("items removed")
	}
}

// Resize reports a new container width. The re-layout is debounced: bursts
// of resize signals within the quiet period collapse into one layout pass,
// and a pending pass is rescheduled rather than stacked. A width that does
// not change the column count still re-estimates heights, since estimates
// are column-width-dependent.
func (c *Controller) Resize(width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debounce <= 0 {
		c.applyWidth(width)
		return
	}

	c.pendingWidth = width
	if c.resizeTimer != nil {
		c.resizeTimer.Reset(c.debounce)
		return
	}
	c.resizeTimer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.resizeTimer = nil
		c.applyWidth(c.pendingWidth)
	})
}

// applyWidth recomputes the column count and re-lays-out.
// Callers must hold c.mu.
func (c *Controller) applyWidth(width float64) {
	c.containerWidth = width
	k := ColumnsForWidth(c.breakpoints, width)
	if k != c.columnCount {
		c.logger.Debug("breakpoint crossed", "width", width, "columns", k)
	}
	c.columnCount = k
	c.relayout("viewport changed")
}

// SetMeasuredHeight records the real render height for an item. The
// measurement always sticks; a re-layout only runs when the correction is
// material (relative delta above the rebalance threshold).
func (c *Controller) SetMeasuredHeight(id string, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !(height > 0) || math.IsNaN(height) || math.IsInf(height, 0) {
		c.logger.Warn("ignoring degenerate measured height", "item", id, "height", height)
		return
	}

	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		prev := c.items[i].BestHeight()
		c.items[i].MeasuredHeight = height
		if prev > 0 && math.Abs(height-prev)/prev > c.threshold {
			c.relayout("measured height changed")
		}
		return
	}
}

// Reflow forces a full re-layout from the canonical order.
func (c *Controller) Reflow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.relayout("forced")
}

// Close cancels any pending debounced resize. The controller stays usable;
// Close exists so view teardown does not leak a timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
		c.resizeTimer = nil
	}
}

// relayout runs the estimate -> partition -> reconcile cycle.
// Callers must hold c.mu.
//
// The column count can only be invalid here if a custom breakpoint table
// produced one; the previous assignment is kept in that case, per the
// error contract.
func (c *Controller) relayout(reason string) {
	if c.columnCount == 0 {
		// No viewport signal yet; width 0 still maps to the floor count.
		c.columnCount = ColumnsForWidth(c.breakpoints, c.containerWidth)
	}
	if err := errors.ValidateColumnCount(c.columnCount); err != nil {
		c.logger.Error("refusing layout, keeping previous assignment", "err", err)
		return
	}

	start := time.Now()

	c.state = StateEstimating
	c.columnWidth = ColumnWidthFor(c.containerWidth, c.columnCount, c.gutter)
	for i := range c.items {
		c.items[i].EstimatedHeight = c.estimator.Estimate(c.items[i].ID, c.items[i].AspectRatio, c.columnWidth)
	}

	c.state = StatePartitioning
	entries := make([]partition.Entry, len(c.items))
	for i, it := range c.items {
		entries[i] = partition.Entry{ID: it.ID, Height: it.BestHeight()}
	}
	res, err := partition.Partition(entries, c.columnCount, c.popts)
	if err != nil {
		c.logger.Error("partition failed, keeping previous assignment", "err", err)
		c.state = StateReconciled
		return
	}

	c.assignment = res.Assignment
	c.lastVariation = res.Variation
	c.state = StateReconciled

	c.logger.Debug("layout reconciled",
		"reason", reason,
		"items", len(c.items),
		"columns", c.columnCount,
		"variation", res.Variation,
		"iterations", res.Iterations,
		"duration", time.Since(start).Round(time.Microsecond))

	if c.onLayout != nil {
		c.onLayout(render.Materialize(res, c.items, c.columnWidth))
	}
}

// Assignment returns a copy of the current item -> column mapping.
func (c *Controller) Assignment() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.assignment))
	for id, col := range c.assignment {
		out[id] = col
	}
	return out
}
