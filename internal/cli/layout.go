package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// layoutCommand creates the layout command for computing gallery layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		configPath string
		formats    string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [feed.json]",
		Short: "Compute a balanced column layout for a gallery feed",
		Long: `Compute a balanced column layout for a gallery feed.

The layout command takes a feed.json file (a list of gallery items with
IDs and optional aspect ratios) and distributes the items across columns so
the column heights come out nearly equal. The output is a layout.json file
and, optionally, an SVG diagram of the resulting columns.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, configPath)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file base (default: <input>.layout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./masonry.toml)")

	// Layout flags
	cmd.Flags().Float64VarP(&opts.ContainerWidth, "width", "w", 0, "container width in pixels (default: 1200)")
	cmd.Flags().IntVarP(&opts.Columns, "columns", "k", 0, "column count (default: derived from width)")
	cmd.Flags().Float64Var(&opts.Gutter, "gutter", 0, "inter-column gutter in pixels")

	// Partition flags
	cmd.Flags().Float64Var(&opts.TargetVariation, "target", 0, "target height variation percentage")
	cmd.Flags().IntVar(&opts.MaxIterations, "iterations", 0, "refinement iteration budget")
	cmd.Flags().BoolVar(&opts.Randomize, "randomize", false, "enable the seeded plateau escape")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for --randomize")

	// Render flags
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output formats, comma-separated: json (default), svg")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label items in the SVG output")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "include a stats readout in the SVG output")

	return cmd
}

// runLayout loads the feed, runs the pipeline, and writes output files.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyConfig(&opts, cfg)

	feed, err := gallery.ReadFeedFile(input)
	if err != nil {
		return fmt.Errorf("load feed %s: %w", input, err)
	}
	opts.Items = feed.Items
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout"
	}

	printSuccess("Layout complete")
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printLayoutStats(result.Stats.ItemCount, result.Stats.ColumnCount, result.Stats.Variation, result.CacheInfo.LayoutHit)
	if !result.Stats.TargetMet {
		printDetail("target variation not reached after %d iterations", result.Stats.Iterations)
	}
	printNewline()
	printNextStep("Preview", "masonry preview "+input)

	return nil
}
