package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/cluster"
	"github.com/matzehuels/blockscape/pkg/config"
	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/provider"
)

// maxTopics bounds the topic column of the fetch table.
const maxTopics = 3

type fetchOpts struct {
	save    bool
	refresh bool
	raw     bool
}

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch START [END]",
		Short: "Fetch a block range and summarize it",
		Long: `Fetch a block range and summarize it.

Prints one row per block with its point and cluster counts and the most
common topics. A range may span at most 100 blocks.

With --save the points are written to the local SQLite snapshot store, which
the sqlite provider reads back offline:

  blockscape fetch 1200 1250 --save
  blockscape explore 1200 1250 --provider sqlite`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args)
			if err != nil {
				return err
			}
			return c.runFetch(cmd, start, end, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "save the points to the SQLite snapshot store")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the points as JSON tuples instead of a table")
	cmd.Flags().String("store", "", "snapshot store path (default "+config.Defaults()[config.SQLitePath]+")")
	c.bind(config.SQLitePath, "store")

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, start, end int, opts fetchOpts) error {
	ctx := cmd.Context()
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}

	prov, closeProv, err := c.newProvider(ctx, cfg, opts.refresh)
	if err != nil {
		return err
	}
	defer closeProv()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching blocks %d..%d from %s...", start, end, prov.Name()))
	spinner.Start()
	prog := newProgress(c.Logger)

	points, err := prov.Fetch(ctx, start, end)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()

	if opts.raw {
		data, err := blocks.Encode(points)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	rows, err := summarize(points)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Fetched %d points in %d blocks", len(points), len(rows)))
	writeBlockTable(cmd.OutOrStdout(), rows)

	if opts.save {
		return c.saveSnapshot(ctx, cfg, prov, points)
	}
	printNextStep("Explore it", fmt.Sprintf("%s explore %d %d", appName, start, end))
	return nil
}

func (c *CLI) saveSnapshot(ctx context.Context, cfg *config.Config, prov provider.Provider, points []blocks.Point) error {
	path := cfg.String(config.SQLitePath)
	if s, ok := prov.(*provider.Store); ok && s.Name() == "sqlite:"+path {
		printWarning("Points were read from %s, nothing to save", path)
		return nil
	}

	store, err := provider.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Save(ctx, points)
	if err != nil {
		return err
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	printSuccess("Saved %d points", n)
	printFile(path)
	printDetail("Store holds %d blocks (%d..%d), %d points", stats.Blocks, stats.MinBlock, stats.MaxBlock, stats.Points)
	return nil
}

// summarize groups points per block and counts their clusters. Topics are
// the short summaries of the largest clusters.
func summarize(points []blocks.Point) ([]blockRow, error) {
	idx := blocks.NewIndex()
	if err := idx.Load(points); err != nil {
		return nil, err
	}

	var rows []blockRow
	for _, n := range idx.BlockNumbers() {
		pts, _ := idx.Block(n)
		clusters := cluster.Build(pts, blocks.SharedSource)

		slices.SortStableFunc(clusters, func(a, b *cluster.Cluster) int {
			return len(b.Points) - len(a.Points)
		})
		var topics []string
		for _, cl := range clusters {
			if cl.ShortSummary != "" && !slices.Contains(topics, cl.ShortSummary) {
				topics = append(topics, cl.ShortSummary)
			}
			if len(topics) == maxTopics {
				break
			}
		}

		rows = append(rows, blockRow{
			Block:    n,
			Points:   len(pts),
			Clusters: len(clusters),
			Topics:   strings.Join(topics, ", "),
		})
	}
	return rows, nil
}

// parseRange reads START [END] arguments. END defaults to START.
func parseRange(args []string) (start, end int, err error) {
	start, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "start block %q is not an integer", args[0])
	}
	end = start
	if len(args) > 1 {
		if end, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, errors.New(errors.ErrCodeInvalidInput, "end block %q is not an integer", args[1])
		}
	}
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
