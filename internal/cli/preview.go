package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/partition"
	"github.com/matzehuels/masonry/pkg/render"
)

// pxPerCell maps terminal cells to layout pixels, so resizing the terminal
// walks through the same breakpoints a browser window would.
const pxPerCell = 10.0

// previewCommand creates the interactive terminal preview.
func (c *CLI) previewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "preview [feed.json]",
		Short: "Preview a gallery layout interactively in the terminal",
		Long: `Preview a gallery layout interactively in the terminal.

The preview renders the balanced columns as boxes and re-runs the layout
whenever the terminal is resized, so you can watch the column count change
across breakpoints. Press r to force a re-layout and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := gallery.ReadFeedFile(args[0])
			if err != nil {
				return fmt.Errorf("load feed %s: %w", args[0], err)
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			model, err := newPreviewModel(feed, cfg.BreakpointTable(), partition.Options{
				TargetVariation: cfg.Partition.TargetVariation,
				MaxIterations:   cfg.Partition.MaxIterations,
			})
			if err != nil {
				return err
			}
			defer model.close()

			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./masonry.toml)")
	return cmd
}

// Preview styles
var (
	previewColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)

	previewItemStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	previewBarStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	previewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// latestLayout receives the controller's emissions. The controller runs
// synchronously here, so Update reads it right after Resize returns.
type latestLayout struct {
	cs render.ColumnSet
}

// previewModel is the bubbletea model for the interactive preview.
type previewModel struct {
	ctrl   *layout.Controller
	latest *latestLayout
	width  int
	height int
}

// newPreviewModel builds the controller and seeds it with the feed.
func newPreviewModel(feed gallery.Feed, table []layout.Breakpoint, popts partition.Options) (previewModel, error) {
	latest := &latestLayout{}
	ctrl := layout.New(
		layout.WithDebounce(0), // bubbletea already coalesces resize events
		layout.WithBreakpoints(table),
		layout.WithPartitionOptions(popts),
		layout.OnLayout(func(cs render.ColumnSet) { latest.cs = cs }),
	)
	if err := ctrl.SetItems(feed.Items); err != nil {
		ctrl.Close()
		return previewModel{}, err
	}
	return previewModel{ctrl: ctrl, latest: latest}, nil
}

func (m previewModel) close() {
	m.ctrl.Close()
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.ctrl.Reflow()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ctrl.Resize(float64(msg.Width) * pxPerCell)
	}
	return m, nil
}

func (m previewModel) View() string {
	cs := m.latest.cs
	if cs.ColumnCount == 0 {
		return previewStatusStyle.Render("waiting for first layout...")
	}

	boxes := make([]string, len(cs.Columns))
	for i, col := range cs.Columns {
		boxes[i] = m.renderColumn(col, cs)
	}
	grid := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)

	status := fmt.Sprintf("%d items · %d columns · variation %.1f%%  (r re-layout, q quit)",
		cs.ItemCount(), cs.ColumnCount, cs.Variation)

	return grid + "\n" + previewStatusStyle.Render(status)
}

// renderColumn draws one column as item rows with height-proportional bars.
func (m previewModel) renderColumn(col render.Column, cs render.ColumnSet) string {
	// Bars scale against the tallest item so every column uses the same
	// unit.
	maxItem := 1.0
	for _, c := range cs.Columns {
		for _, it := range c.Items {
			if it.Height > maxItem {
				maxItem = it.Height
			}
		}
	}

	barWidth := m.width/max(cs.ColumnCount, 1) - 6
	if barWidth < 4 {
		barWidth = 4
	}

	var b strings.Builder
	for i, it := range col.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		bar := int(it.Height / maxItem * float64(barWidth))
		if bar < 1 {
			bar = 1
		}
		b.WriteString(previewItemStyle.Render(it.ID))
		b.WriteString("\n")
		b.WriteString(previewBarStyle.Render(strings.Repeat("█", bar)))
	}
	if len(col.Items) == 0 {
		b.WriteString(StyleDim.Render("empty"))
	}

	box := previewColumnStyle.Render(b.String())
	title := StyleDim.Render(fmt.Sprintf(" %.0fpx", col.Height))
	return lipgloss.JoinVertical(lipgloss.Left, box, title)
}
