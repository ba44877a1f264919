package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/config"
	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/panel"
	"github.com/matzehuels/blockscape/pkg/render/sink"
)

// Render output formats.
const (
	formatPNG  = "png"
	formatSVG  = "svg"
	formatJSON = "json"
	formatTerm = "term"
)

// validRenderFormats is the set of supported render formats.
var validRenderFormats = []string{formatPNG, formatSVG, formatJSON, formatTerm}

// blockOpts selects one block of a fetched range.
type blockOpts struct {
	block   int
	refresh bool
}

type renderOpts struct {
	blockOpts
	format string
	output string
	scale  float64
	cols   int
	rows   int
}

// renderCommand creates the render command for drawing a single block.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatPNG, scale: 1, cols: 100, rows: 30}

	cmd := &cobra.Command{
		Use:   "render START [END]",
		Short: "Draw one block to PNG, SVG, JSON or the terminal",
		Long: `Draw one block to PNG, SVG, JSON or the terminal.

The range is fetched, the view is fitted to every point of the range, and
the selected block (the first one by default) is drawn with its cluster
skeletons, centroids and labels.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args)
			if err != nil {
				return err
			}
			if !slices.Contains(validRenderFormats, opts.format) {
				return errors.New(errors.ErrCodeUnsupported, "invalid format: %s (must be png, svg, json or term)", opts.format)
			}
			return c.runRender(cmd, start, end, opts)
		},
	}

	c.addBlockFlags(cmd, &opts.blockOpts)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: png, svg, json or term")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default block-N.<format>, stdout for term)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().IntVar(&opts.cols, "cols", opts.cols, "terminal columns (term)")
	cmd.Flags().IntVar(&opts.rows, "rows", opts.rows, "terminal rows (term)")

	return cmd
}

// addBlockFlags registers the flags shared by commands that draw one block.
func (c *CLI) addBlockFlags(cmd *cobra.Command, opts *blockOpts) {
	cmd.Flags().IntVarP(&opts.block, "block", "b", -1, "block number to draw (default first block of the range)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().Int("width", 0, "canvas width in pixels")
	cmd.Flags().Int("height", 0, "canvas height in pixels")
	c.bind(config.CanvasWidth, "width")
	c.bind(config.CanvasHeight, "height")
}

// openBlock fetches start..end into a running panel and selects the block.
// The returned function stops the panel and closes the provider.
func (c *CLI) openBlock(cmd *cobra.Command, start, end int, opts blockOpts) (*panel.Panel, func(), error) {
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	popts, err := c.panelOptions(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	prov, closeProv, err := c.newProvider(ctx, cfg, opts.refresh)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	cleanup := func() {
		cancel()
		closeProv()
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching blocks %d..%d...", start, end))
	spinner.Start()
	pn, err := loadPanel(ctx, prov, start, end, popts...)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		cleanup()
		return nil, nil, err
	}
	spinner.Stop()

	if err := selectBlock(pn, opts.block); err != nil {
		cleanup()
		return nil, nil, err
	}
	return pn, cleanup, nil
}

// selectBlock moves the slider to block number n. A negative n keeps the
// first block.
func selectBlock(pn *panel.Panel, n int) error {
	if n < 0 {
		return nil
	}
	st, err := pn.Status()
	if err != nil {
		return err
	}
	pos := slices.Index(st.Blocks, n)
	if pos < 0 {
		return errors.New(errors.ErrCodeNotFound, "block %d has no points (loaded %v)", n, st.Blocks)
	}
	return pn.Select(pos)
}

func (c *CLI) runRender(cmd *cobra.Command, start, end int, opts renderOpts) error {
	pn, cleanup, err := c.openBlock(cmd, start, end, opts.blockOpts)
	if err != nil {
		return err
	}
	defer cleanup()

	v, err := pn.View()
	if err != nil {
		return err
	}

	var data []byte
	switch opts.format {
	case formatPNG:
		if data, err = sink.RenderPNG(v.Frame, sink.WithScale(opts.scale)); err != nil {
			return err
		}
	case formatSVG:
		data = sink.RenderSVG(v.Frame)
	case formatJSON:
		if data, err = sink.RenderJSON(v.Frame, sink.WithJSONIndent()); err != nil {
			return err
		}
	case formatTerm:
		out := sink.RenderTerm(v.Frame, opts.cols, opts.rows)
		if opts.output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		data = []byte(out)
	}

	output := opts.output
	if output == "" {
		output = fmt.Sprintf("block-%d.%s", v.Status.Block, opts.format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	printSuccess("Rendered block %d (%d points, %d clusters)", v.Status.Block, v.Status.Points, v.Status.Clusters)
	printFile(output)
	return nil
}
