// Package render materializes partition results into renderable columns.
//
// # Overview
//
// This package turns a column assignment into concrete output. It provides:
//
//   - [Materialize]: partition result + items → ordered [ColumnSet]
//   - JSON serialization ([MarshalColumnSet], [UnmarshalColumnSet]) and
//     file helpers ([WriteColumnSetFile], [ReadColumnSetFile])
//   - A diagnostic SVG renderer ([RenderSVG])
//
// # Column Materialization
//
// [Materialize] walks items in canonical feed order and appends each one to
// its assigned column, so every column preserves reading order top to
// bottom:
//
//	cs := render.Materialize(result, feed.Items, columnWidth)
//	data, err := render.MarshalColumnSet(cs)
//
// # SVG Output
//
// [RenderSVG] draws the columns as proportional stacked rectangles, useful
// for eyeballing balance without a browser. Options follow the functional
// pattern:
//
//	svg := render.RenderSVG(cs, render.WithLabels(), render.WithStats())
//
// WithLabels prints each item's ID inside its block; WithStats adds a
// footer with column count and height variation.
package render
