package pipeline

import (
	"fmt"

	"github.com/matzehuels/masonry/pkg/render"
)

// =============================================================================
// Artifact Rendering
// =============================================================================

// RenderArtifacts renders a column set into every requested format.
// Returns a map keyed by format name.
func RenderArtifacts(cs render.ColumnSet, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(cs, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderFormat renders a single format.
func renderFormat(cs render.ColumnSet, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return render.MarshalColumnSet(cs)
	case FormatSVG:
		var svgOpts []render.SVGOption
		if opts.Labels {
			svgOpts = append(svgOpts, render.WithLabels())
		}
		if opts.Stats {
			svgOpts = append(svgOpts, render.WithStats())
		}
		return render.RenderSVG(cs, svgOpts...), nil
	default:
		return nil, ValidateFormat(format)
	}
}
