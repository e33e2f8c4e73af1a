package vtree

import (
	"context"
	"time"

	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/widgetpool"
	"github.com/joshuapare/vtree/pkg/types"
)

// maxDisplayPasses bounds the cascade of AutoExpand rows revealed by one
// layout.
const maxDisplayPasses = 16

// Window returns the visible rows top..top+count, clamped to the visible
// range.
func (t *Tree) Window(top, count int) []*Row {
	flat := t.store.Flatten()
	if count <= 0 || len(flat) == 0 {
		return nil
	}
	top = min(max(top, 0), len(flat)-1)
	return flat[top:min(top+count, len(flat))]
}

// Layout performs one scroll/paint pass over count rows starting at the
// visible index top. Rows entering the view trigger their child-load
// policy; widgets for rows leaving the view are released before widgets
// for new rows are acquired. A failing load or data callback degrades the
// affected row or cell and does not fail the layout.
func (t *Tree) Layout(ctx context.Context, top, count int) (*Frame, error) {
	if err := t.live("layout"); err != nil {
		return nil, err
	}
	start := time.Now()

	var rows []*Row
	for pass := range maxDisplayPasses {
		rows = t.Window(top, count)
		changed := false
		for _, r := range rows {
			c, err := t.loader.OnDisplay(ctx, r)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}
			changed = changed || c
		}
		if !changed {
			break
		}
		logger.Debug("vtree: layout pass revealed rows", "pass", pass)
	}

	cols := t.cols.Visible()
	frame, err := t.pool.Layout(rows, cols, widgetpool.LayoutOptions{
		RowHeaders:    t.opts.RowHeaders,
		Dividers:      t.opts.Dividers,
		ColumnHeaders: t.opts.ColumnHeaders,
	})
	if err != nil {
		return nil, err
	}

	t.attachEditors(frame)
	t.autoSize(frame)
	logger.Debug("vtree: layout", "top", top, "rows", len(rows), "elapsed", time.Since(start))
	return frame, nil
}

func (t *Tree) attachEditors(frame *Frame) {
	active := t.editors.Active()
	for _, fr := range frame.Rows {
		for i, w := range fr.Cells {
			cell := Cell{Row: fr.Row, Col: frame.Columns[i]}
			if ctrl, err := t.editors.Show(cell); err == nil && ctrl != nil {
				w.Control = ctrl
			}
			if active != nil && active.Cell() == cell {
				w.Editing = true
				w.Control = active.Control()
			}
		}
	}
}

func (t *Tree) autoSize(frame *Frame) {
	for i, col := range frame.Columns {
		if col.AutoSize == types.AutoSizeManual {
			continue
		}
		texts := make([]string, 0, len(frame.Rows))
		for _, fr := range frame.Rows {
			// Indentation and the expansion glyph share the first column.
			pad := ""
			if i == 0 {
				pad = indent(fr.Row.Depth() + 1)
			}
			texts = append(texts, pad+fr.Cells[i].Text)
		}
		col.Fit(texts...)
	}
}

func indent(n int) string {
	b := make([]byte, 2*max(n, 0))
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
