package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/render/nodelink"
)

type exportOpts struct {
	blockOpts
	format   string
	output   string
	detailed bool
}

// exportCommand creates the export command for Graphviz output.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "export START [END]",
		Short: "Export one block's cluster skeletons as Graphviz DOT or SVG",
		Long: `Export one block's cluster skeletons as Graphviz DOT or SVG.

Each cluster becomes a subgraph labelled with its short summary; points are
pinned at their data coordinates and joined by the skeleton edges.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args)
			if err != nil {
				return err
			}
			if opts.format != "dot" && opts.format != "svg" {
				return errors.New(errors.ErrCodeUnsupported, "invalid format: %s (must be dot or svg)", opts.format)
			}
			return c.runExport(cmd, start, end, opts)
		},
	}

	c.addBlockFlags(cmd, &opts.blockOpts)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout for dot, block-N.svg for svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with post content")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, start, end int, opts exportOpts) error {
	pn, cleanup, err := c.openBlock(cmd, start, end, opts.blockOpts)
	if err != nil {
		return err
	}
	defer cleanup()

	block, clusters, err := pn.Clusters()
	if err != nil {
		return err
	}
	dot := nodelink.ToDOT(clusters, nodelink.Options{Block: block, Detailed: opts.detailed})

	if opts.format == "dot" && opts.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), dot)
		return nil
	}

	data := []byte(dot)
	if opts.format == "svg" {
		if data, err = nodelink.RenderSVG(cmd.Context(), dot); err != nil {
			return fmt.Errorf("render graph: %w", err)
		}
	}

	output := opts.output
	if output == "" {
		output = fmt.Sprintf("block-%d.%s", block, opts.format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	printSuccess("Exported %d clusters of block %d", len(clusters), block)
	printFile(output)
	return nil
}
