package vtree

import (
	"context"
	"io"

	"github.com/goccy/go-json"

	"github.com/joshuapare/vtree/pkg/types"
)

// State is the persisted view state of a tree: which items are expanded
// and which are selected, by Options.Key.
type State struct {
	Expanded []string `json:"expanded"`
	Selected []string `json:"selected,omitempty"`
}

// SaveState captures the expanded and selected rows.
func (t *Tree) SaveState() State {
	var st State
	root := t.store.Root()
	for r := range t.store.All() {
		if r == root && !t.store.ShowRoot() {
			continue
		}
		if r.IsExpanded() {
			st.Expanded = append(st.Expanded, t.opts.Key(r.Item()))
		}
	}
	for _, r := range t.sel.Selected() {
		st.Selected = append(st.Selected, t.opts.Key(r.Item()))
	}
	return st
}

// RestoreState expands the rows named in st, loading as it goes, then
// replaces the selection with the named rows that are visible.
func (t *Tree) RestoreState(ctx context.Context, st State) error {
	if err := t.live("restore state"); err != nil {
		return err
	}
	want := make(map[string]bool, len(st.Expanded))
	for _, k := range st.Expanded {
		want[k] = true
	}

	queue := []*Row{t.store.Root()}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if r != t.store.Root() || t.store.ShowRoot() {
			if !want[t.opts.Key(r.Item())] {
				continue
			}
			if ok, err := t.loader.Expand(ctx, r); err != nil || !ok {
				continue
			}
		}
		queue = append(queue, r.Children()...)
	}

	if len(st.Selected) == 0 {
		return nil
	}
	sel := make(map[string]bool, len(st.Selected))
	for _, k := range st.Selected {
		sel[k] = true
	}
	kind := types.SelectClearAndAdd
	runStart := -1
	flush := func(end int) error {
		if runStart < 0 {
			return nil
		}
		_, err := t.sel.ApplyChange(runStart, end, kind)
		kind = types.SelectAdd
		runStart = -1
		return err
	}
	flat := t.store.Flatten()
	for i, r := range flat {
		if sel[t.opts.Key(r.Item())] {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if err := flush(i - 1); err != nil {
			return err
		}
	}
	return flush(len(flat) - 1)
}

// WriteState encodes st as JSON.
func WriteState(w io.Writer, st State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

// ReadState decodes a State written by WriteState.
func ReadState(r io.Reader) (State, error) {
	var st State
	err := json.NewDecoder(r).Decode(&st)
	return st, err
}
