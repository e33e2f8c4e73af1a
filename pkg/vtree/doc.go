/*
Package vtree displays large, lazily loaded item hierarchies as rows and
columns without creating a visual object per item.

# Quick Start

Wrap your data in a types.ItemGraph and lay out the rows in view:

	t, err := vtree.New(ctx, graph, rootItem, vtree.Options{
	    Columns: []*vtree.Column{{Name: "name"}, {Name: "size", AutoSize: types.AutoSizeFit}},
	    Binding: &vtree.Binding{CellData: cellData},
	})
	if err != nil {
	    log.Fatal(err)
	}
	defer t.Dispose()

	frame, err := t.Layout(ctx, top, height)

# Components

  - Row store: expand/collapse and the flattened visible order.
  - Child loading: Normal, AutoExpand and LoadOnExpand policies.
  - Widget pool: recycled row, cell and header widgets.
  - Editors: in-place cell editing with a cancellable set-value notification.
  - Drag and drop: allowed locations, pointer geometry and drop effects.
  - Selection: ranged changes with a cancellable pre-change notification.

# Threading

A Tree is not safe for concurrent use. Hooks may call back into the tree;
re-entering an edit from its own commit fails with types.ErrReentrantEdit.
*/
package vtree
