package vtree

import (
	"fmt"

	"github.com/joshuapare/vtree/pkg/types"
)

// source adapts the tree's bindings to the widget pool and editor manager.
type source struct {
	t *Tree
}

func (s *source) BindingKey(r *Row) string {
	if b := s.t.binding(r); b != nil {
		return b.Key
	}
	return ""
}

func (s *source) RowData(r *Row) (types.RowData, error) {
	b := s.t.binding(r)
	if b == nil || b.RowData == nil {
		return types.RowData{}, nil
	}
	return b.RowData(r)
}

func (s *source) CellData(r *Row, c *Column) (types.CellData, error) {
	b := s.t.binding(r)
	if b == nil || b.CellData == nil {
		return types.CellData{}, fmt.Errorf("no cell data for %v", r.Item())
	}
	return b.CellData(r, c)
}

func (s *source) Value(cell Cell) (any, error) {
	d, err := s.CellData(cell.Row, cell.Col)
	if err != nil {
		return nil, err
	}
	if d.Value != nil {
		return d.Value, nil
	}
	return d.Text, nil
}

func (s *source) Store(cell Cell, v any) error {
	b := s.t.binding(cell.Row)
	if b == nil || b.SetValue == nil {
		return &types.Error{Kind: types.ErrKindState, Op: "set-cell-value", Msg: "binding is read-only"}
	}
	return b.SetValue(cell.Row, cell.Col, v)
}

// editable checks that the cell has an editor and is not read-only.
func (t *Tree) editable(row *Row, col *Column) error {
	if _, err := t.editors.EditorFor(Cell{Row: row, Col: col}); err != nil {
		return err
	}
	src := source{t: t}
	d, err := src.CellData(row, col)
	if err != nil {
		return types.Wrap(types.ErrCallback, "begin edit", err)
	}
	if d.ReadOnly {
		return &types.Error{Kind: types.ErrKindState, Op: "begin edit", Msg: "cell is read-only"}
	}
	return nil
}
