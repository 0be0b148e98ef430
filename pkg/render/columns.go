// Package render translates computed column assignments into consumable
// outputs: ordered per-column item lists for a presentation layer, a JSON
// wire document, and a diagnostic SVG preview.
package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/partition"
)

// ColumnItem is one entry in a rendered column: the item ID plus the height
// the balancer worked with, so a presentation layer can reserve space before
// the real asset loads.
type ColumnItem struct {
	ID     string  `json:"id" bson:"id"`
	Height float64 `json:"height" bson:"height"`
}

// Column is one vertical lane of the masonry layout.
type Column struct {
	Index  int          `json:"index" bson:"index"`
	Items  []ColumnItem `json:"items" bson:"items"`
	Height float64      `json:"height" bson:"height"`
}

// ColumnSet is the complete output of one layout pass - the document the
// CLI writes, the HTTP service returns, and the store persists.
type ColumnSet struct {
	ColumnCount int      `json:"column_count" bson:"column_count"`
	ColumnWidth float64  `json:"column_width" bson:"column_width"`
	Columns     []Column `json:"columns" bson:"columns"`

	// Variation is the achieved fairness metric in percent. It is reported
	// for diagnostics (debug overlays) even when the target was met.
	Variation float64 `json:"variation" bson:"variation"`

	// TargetMet is false when the partitioner exhausted its budget above
	// the target variation - a degraded result, never an error.
	TargetMet bool `json:"target_met" bson:"target_met"`

	// Iterations is the refinement work the partitioner spent.
	Iterations int `json:"iterations" bson:"iterations"`
}

// ItemCount returns the total number of items across all columns.
func (cs ColumnSet) ItemCount() int {
	n := 0
	for _, c := range cs.Columns {
		n += len(c.Items)
	}
	return n
}

// Materialize converts a partition result into a ColumnSet.
// Heights are looked up from the item list by ID; items keep the per-column
// order the partitioner produced.
func Materialize(res partition.Result, items []gallery.Item, columnWidth float64) ColumnSet {
	heightByID := make(map[string]float64, len(items))
	for _, it := range items {
		heightByID[it.ID] = it.BestHeight()
	}

	cs := ColumnSet{
		ColumnCount: len(res.Columns),
		ColumnWidth: columnWidth,
		Columns:     make([]Column, len(res.Columns)),
		Variation:   res.Variation,
		TargetMet:   res.TargetMet,
		Iterations:  res.Iterations,
	}
	for c, ids := range res.Columns {
		col := Column{Index: c, Items: make([]ColumnItem, len(ids))}
		for i, id := range ids {
			h := heightByID[id]
			col.Items[i] = ColumnItem{ID: id, Height: h}
			col.Height += h
		}
		cs.Columns[c] = col
	}
	return cs
}

// MarshalColumnSet serializes a ColumnSet to pretty-printed JSON bytes.
func MarshalColumnSet(cs ColumnSet) ([]byte, error) {
	return json.MarshalIndent(cs, "", "  ")
}

// UnmarshalColumnSet deserializes JSON bytes into a ColumnSet.
func UnmarshalColumnSet(data []byte) (ColumnSet, error) {
	var cs ColumnSet
	if err := json.Unmarshal(data, &cs); err != nil {
		return ColumnSet{}, fmt.Errorf("unmarshal column set: %w", err)
	}
	if cs.ColumnCount != len(cs.Columns) {
		return ColumnSet{}, fmt.Errorf("column set corrupt: count %d but %d columns", cs.ColumnCount, len(cs.Columns))
	}
	return cs, nil
}

// WriteColumnSetFile writes a ColumnSet to a JSON file.
func WriteColumnSetFile(cs ColumnSet, path string) error {
	data, err := MarshalColumnSet(cs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadColumnSetFile reads a ColumnSet from a JSON file.
func ReadColumnSetFile(path string) (ColumnSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ColumnSet{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalColumnSet(data)
}
