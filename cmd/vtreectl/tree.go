package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/vtree/internal/source"
	"github.com/joshuapare/vtree/pkg/render"
	"github.com/joshuapare/vtree/pkg/types"
	"github.com/joshuapare/vtree/pkg/vtree"
)

var (
	treeDepth  int
	treeField  string
	treeWidth  int
	treePolicy string
	treeOrder  string
	treeDesc   bool
)

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 2, "Levels to expand below the start row (-1 for all)")
	cmd.Flags().StringVar(&treeField, "field", "value", "Attribute shown in the value column")
	cmd.Flags().IntVar(&treeWidth, "width", 80, "Output width")
	cmd.Flags().StringVar(&treePolicy, "policy", "", "Child policy: normal, auto-expand or load-on-expand")
	cmd.Flags().StringVar(&treeOrder, "order-by", "", "Sort siblings by this column (name or value)")
	cmd.Flags().BoolVar(&treeDesc, "desc", false, "Sort in descending order")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <source> [path]",
		Short: "Expand and render a tree",
		Long: `The tree command expands a source to the given depth, lays out every
visible row and renders it as a table.

Example:
  vtreectl tree catalog.json
  vtreectl tree catalog.json /books/fiction --depth -1
  vtreectl tree catalog.json --order-by value --desc
  vtreectl tree inventory.db --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd.Context(), args)
		},
	}
}

// visibleRow is the JSON shape of one laid-out row.
type visibleRow struct {
	Index    int    `json:"index"`
	Depth    int    `json:"depth"`
	Path     string `json:"path"`
	Name     string `json:"name"`
	Value    string `json:"value,omitempty"`
	Expanded bool   `json:"expanded,omitempty"`
	Leaf     bool   `json:"leaf,omitempty"`
	Selected bool   `json:"selected,omitempty"`
	Error    string `json:"error,omitempty"`
}

// openTree opens src and builds a tree whose top rows are the children of
// start ("" for the source root).
func openTree(ctx context.Context, src *source.Source, start string, field string) (*vtree.Tree, error) {
	root := src.Root
	if start != "" {
		var err error
		if root, err = src.Find(ctx, start); err != nil {
			return nil, err
		}
	}
	opts := treeOptions(src, field)
	if treePolicy != "" {
		p, err := types.ParseChildPolicy(treePolicy)
		if err != nil {
			return nil, err
		}
		opts.DefaultChildPolicy = p
	}
	return vtree.New(ctx, src.Graph, root, opts)
}

func layoutAll(ctx context.Context, tree *vtree.Tree) (*vtree.Frame, error) {
	// AutoExpand rows may grow the view while laying out.
	for {
		n := tree.VisibleCount()
		frame, err := tree.Layout(ctx, 0, n)
		if err != nil {
			return nil, err
		}
		if tree.VisibleCount() == n {
			return frame, nil
		}
	}
}

func frameRows(frame *vtree.Frame, src *source.Source) []visibleRow {
	out := make([]visibleRow, 0, len(frame.Rows))
	for _, fr := range frame.Rows {
		vr := visibleRow{
			Index:    fr.Row.VisibleIndex(),
			Depth:    fr.Row.Depth(),
			Path:     src.Path(fr.Row.Item()),
			Expanded: fr.Row.IsExpanded(),
			Leaf:     !fr.Row.CanExpand(),
			Selected: fr.Row.IsSelected(),
		}
		if len(fr.Cells) > 0 {
			vr.Name = fr.Cells[0].Text
		}
		if len(fr.Cells) > 1 {
			vr.Value = fr.Cells[1].Text
		}
		if err := fr.Row.LoadErr(); err != nil {
			vr.Error = err.Error()
		}
		out = append(out, vr)
	}
	return out
}

func runTree(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := openSource(ctx, args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	start := ""
	if len(args) > 1 {
		start = args[1]
	}
	tree, err := openTree(ctx, src, start, treeField)
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	defer tree.Dispose()

	if err := tree.ExpandAll(ctx, tree.Root(), treeDepth); err != nil {
		printVerbose("Warning: expand failed: %v\n", err)
	}
	if treeOrder != "" {
		dir := types.SortAscending
		if treeDesc {
			dir = types.SortDescending
		}
		if err := tree.SetSort(ctx, treeOrder, dir); err != nil {
			return fmt.Errorf("failed to sort by %s: %w", treeOrder, err)
		}
	}
	frame, err := layoutAll(ctx, tree)
	if err != nil {
		return fmt.Errorf("failed to lay out tree: %w", err)
	}

	if jsonOut {
		return printJSON(frameRows(frame, src))
	}
	for _, line := range render.Lines(frame, render.Options{Width: treeWidth, Sort: tree.SortColumn()}) {
		fmt.Fprintln(os.Stdout, line)
	}
	printVerbose("%d rows visible, %d materialized\n", tree.VisibleCount(), tree.Stats().Rows)
	return nil
}
