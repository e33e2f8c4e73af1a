package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/vtree/pkg/vtree"
)

var (
	statsDepth  int
	statsWindow int
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVar(&statsDepth, "depth", -1, "Levels to expand (-1 for all)")
	cmd.Flags().IntVar(&statsWindow, "window", 40, "Viewport height used for the scroll pass")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <source>",
		Short: "Expand a source and report engine statistics",
		Long: `The stats command expands a source, scrolls a viewport from top to
bottom and reports row counts, widget pool activity and timings. It is a
quick way to see how much a given source costs to display.

Example:
  vtreectl stats catalog.json
  vtreectl stats inventory.db --window 25 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), args)
		},
	}
}

// TreeStats is the report printed by stats.
type TreeStats struct {
	Source      string          `json:"source"`
	Rows        int             `json:"rows"`
	Visible     int             `json:"visible"`
	MaxDepth    int             `json:"max_depth"`
	RowsByDepth map[int]int     `json:"rows_by_depth"`
	Pool        vtree.PoolStats `json:"pool"`
	Layouts     int             `json:"layouts"`
	ExpandTime  time.Duration   `json:"expand_ns"`
	ScrollTime  time.Duration   `json:"scroll_ns"`
}

func runStats(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := openSource(ctx, args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	tree, err := openTree(ctx, src, "", "value")
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	defer tree.Dispose()

	st := TreeStats{Source: args[0], RowsByDepth: make(map[int]int)}

	start := time.Now()
	if err := tree.ExpandAll(ctx, tree.Root(), statsDepth); err != nil {
		printVerbose("Warning: expand failed: %v\n", err)
	}
	st.ExpandTime = time.Since(start)

	window := max(statsWindow, 1)
	start = time.Now()
	for top := 0; top == 0 || top < tree.VisibleCount(); top += window {
		if _, err := tree.Layout(ctx, top, window); err != nil {
			return fmt.Errorf("layout at row %d: %w", top, err)
		}
		st.Layouts++
	}
	st.ScrollTime = time.Since(start)

	for r := range tree.Visible() {
		st.RowsByDepth[r.Depth()]++
		st.MaxDepth = max(st.MaxDepth, r.Depth())
	}
	s := tree.Stats()
	st.Rows, st.Visible, st.Pool = s.Rows, s.Visible, s.Pool

	if jsonOut {
		return printJSON(st)
	}

	printInfo("Source:       %s\n", st.Source)
	printInfo("Rows:         %d materialized, %d visible\n", st.Rows, st.Visible)
	printInfo("Max depth:    %d\n", st.MaxDepth)
	for d := 0; d <= st.MaxDepth; d++ {
		printInfo("  depth %-3d   %d\n", d, st.RowsByDepth[d])
	}
	printInfo("Widgets:      %d created, %d reused, %d bound, %d idle, %d failed binds\n",
		st.Pool.Created, st.Pool.Reused, st.Pool.Bound, st.Pool.Idle, st.Pool.Failed)
	printInfo("Layouts:      %d (window %d)\n", st.Layouts, window)
	printInfo("Expand time:  %s\n", st.ExpandTime)
	printInfo("Scroll time:  %s\n", st.ScrollTime)
	return nil
}
