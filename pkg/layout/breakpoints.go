package layout

// Breakpoint maps a minimum container width to a column count.
type Breakpoint struct {
	MinWidth float64
	Columns  int
}

// DefaultBreakpoints is the standard responsive table, ordered from widest
// to narrowest. The first entry whose MinWidth fits wins; anything below
// the last threshold falls through to the floor of 2 columns.
var DefaultBreakpoints = []Breakpoint{
	{MinWidth: 1400, Columns: 5},
	{MinWidth: 1200, Columns: 4},
	{MinWidth: 992, Columns: 3},
	{MinWidth: 768, Columns: 3},
	{MinWidth: 576, Columns: 2},
}

// floorColumns is the column count below the narrowest breakpoint.
const floorColumns = 2

// ColumnsForWidth returns the column count for a container width.
// A nil table means DefaultBreakpoints.
func ColumnsForWidth(table []Breakpoint, width float64) int {
	if table == nil {
		table = DefaultBreakpoints
	}
	for _, bp := range table {
		if width >= bp.MinWidth {
			return bp.Columns
		}
	}
	return floorColumns
}

// ColumnWidthFor splits a container width evenly among k columns with a
// fixed gutter between and around them. Returns 0 for non-positive k.
func ColumnWidthFor(containerWidth float64, k int, gutter float64) float64 {
	if k <= 0 {
		return 0
	}
	w := (containerWidth - float64(k+1)*gutter) / float64(k)
	if w < 0 {
		return 0
	}
	return w
}
