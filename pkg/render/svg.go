package render

import (
	"bytes"
	"fmt"
)

// SVG layout constants, in user units.
const (
	svgGutter    = 8.0
	svgFontSize  = 11.0
	svgMinLabelH = 24.0
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	showLabels bool
	showStats  bool
}

// WithLabels draws each item's ID inside its box.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.showLabels = true } }

// WithStats adds a footer line with variation and iteration diagnostics.
func WithStats() SVGOption { return func(r *svgRenderer) { r.showStats = true } }

// RenderSVG renders a ColumnSet as a simple box diagram: one lane per
// column, one rectangle per item, scaled to the column width the layout was
// computed for. It is a diagnostic artifact, not a pixel-faithful gallery.
func RenderSVG(cs ColumnSet, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	colWidth := cs.ColumnWidth
	if colWidth <= 0 {
		colWidth = 240
	}

	frameWidth := float64(cs.ColumnCount)*(colWidth+svgGutter) + svgGutter
	frameHeight := svgGutter
	for _, col := range cs.Columns {
		h := col.Height + float64(len(col.Items)+1)*svgGutter
		if h > frameHeight {
			frameHeight = h
		}
	}
	if r.showStats {
		frameHeight += 2 * svgFontSize
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		frameWidth, frameHeight, frameWidth, frameHeight)

	for _, col := range cs.Columns {
		x := svgGutter + float64(col.Index)*(colWidth+svgGutter)
		y := svgGutter
		for _, item := range col.Items {
			fmt.Fprintf(&buf,
				`  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="#e8e8e8" stroke="#666" stroke-width="1"/>`+"\n",
				x, y, colWidth, item.Height)
			if r.showLabels && item.Height >= svgMinLabelH {
				fmt.Fprintf(&buf,
					`  <text x="%.1f" y="%.1f" font-size="%.0f" font-family="monospace" fill="#333">%s</text>`+"\n",
					x+svgGutter, y+svgFontSize+2, svgFontSize, escapeXML(item.ID))
			}
			y += item.Height + svgGutter
		}
	}

	if r.showStats {
		fmt.Fprintf(&buf,
			`  <text x="%.1f" y="%.1f" font-size="%.0f" font-family="monospace" fill="#999">variation %.1f%%  iterations %d</text>`+"\n",
			svgGutter, frameHeight-svgFontSize/2, svgFontSize, cs.Variation, cs.Iterations)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
