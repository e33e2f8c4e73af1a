package vtree

import (
	"github.com/joshuapare/vtree/internal/columns"
	"github.com/joshuapare/vtree/internal/config"
	"github.com/joshuapare/vtree/internal/dragdrop"
	"github.com/joshuapare/vtree/internal/editor"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/internal/selection"
	"github.com/joshuapare/vtree/internal/widgetpool"
	"github.com/joshuapare/vtree/pkg/types"
)

// Type aliases for the engine types exposed through Tree.
type (
	Row            = rowstore.Row
	Column         = columns.Column
	Widget         = widgetpool.Widget
	Frame          = widgetpool.Frame
	FrameRow       = widgetpool.FrameRow
	PoolStats      = widgetpool.Stats
	CreatorFunc    = widgetpool.CreatorFunc
	CellEditor     = editor.CellEditor
	Cell           = editor.Cell
	EditSession    = editor.Session
	CellValueEvent = editor.ValueEvent
	SelectionEvent = selection.Event
	DropResolution = dragdrop.Resolution
	DropEvent      = dragdrop.Event
	Align          = columns.Align
)

// Column alignments.
const (
	AlignLeft   = columns.AlignLeft
	AlignRight  = columns.AlignRight
	AlignCenter = columns.AlignCenter
)

// Binding supplies data and defaults for a kind of row. The get-binding hook
// picks one per row; Options.Binding is used otherwise.
type Binding struct {
	// Key groups rows whose widgets are interchangeable in the pool.
	Key string

	// RowData is the get-row-data notification.
	RowData func(row *Row) (types.RowData, error)

	// CellData is the get-cell-data notification. Required.
	CellData func(row *Row, col *Column) (types.CellData, error)

	// SetValue writes an accepted edit. Nil makes every column read-only.
	SetValue func(row *Row, col *Column, value any) error

	// ChildPolicy is the binding default child policy, used when neither
	// the row override nor the get-child-policy hook answers.
	ChildPolicy *types.ChildPolicy

	// DropLocations are the locations rows of this binding accept by
	// default. Zero means OnRow, AboveRow and BelowRow.
	DropLocations types.DropLocation

	// Formats lists the payload formats rows accept. Nil accepts all.
	Formats []string

	// AllowDrag is the default for get-allow-row-drag.
	AllowDrag bool

	// Compare orders sibling items under the sort column. Nil keeps the
	// graph's order.
	Compare func(a, b types.Item, col *Column) int
}

// Hooks are the host notifications. Every field is optional.
type Hooks struct {
	// GetBinding returns the binding for row. Nil results fall back to
	// Options.Binding.
	GetBinding func(row *Row) *Binding

	// ChildPolicy is the get-child-policy notification.
	ChildPolicy func(row *Row) (types.ChildPolicy, bool)

	// ChildrenLoaded reports each finished load.
	ChildrenLoaded func(row *Row, err error)

	// CellValueChanging is the cancellable set-cell-value notification.
	CellValueChanging func(ev *CellValueEvent)

	// SelectionChanging is the cancellable selection-changing notification.
	SelectionChanging func(ev *SelectionEvent)

	// SelectionChanged runs after a selection change was applied.
	SelectionChanged func(kind types.SelectionChange, selected int)

	// AllowedDropLocations is get-allowed-row-drop-locations. row is nil
	// over the empty space.
	AllowedDropLocations func(row *Row, p types.Payload, allowed types.DropLocation) types.DropLocation

	// DropEffect is get-row-drop-effect. Unset means EffectNone, which
	// rejects every drop.
	DropEffect func(row *Row, loc types.DropLocation, p types.Payload) types.DropEffect

	// RowDrop is the non-cancellable row-drop notification.
	RowDrop func(ev DropEvent)

	// AllowRowDrag is get-allow-row-drag; ok=false defers to the binding.
	AllowRowDrag func(row *Row) (allow, ok bool)

	// ContextMenu is get-context-menu.
	ContextMenu func(row *Row) any

	// ColumnInContext is get-column-in-context. Unset means every column.
	ColumnInContext func(col *Column) bool
}

// Options configures a Tree.
type Options struct {
	// ShowRoot displays the root item as the single top-level row.
	ShowRoot bool

	// ReleaseOnCollapse destroys descendant rows when a row collapses.
	ReleaseOnCollapse bool

	// DefaultChildPolicy applies when no hook or binding decides.
	DefaultChildPolicy types.ChildPolicy

	// RowHeaders, Dividers and ColumnHeaders select extra widgets per layout.
	RowHeaders    bool
	Dividers      bool
	ColumnHeaders bool

	// Placeholder is the text of cells whose data callback failed.
	// Default: "<unavailable>"
	Placeholder string

	Columns []*Column
	Editors []*CellEditor

	// Prewarm builds widgets for this many rows of the default binding
	// when the tree is created.
	Prewarm int

	// Creators build host visuals per widget kind.
	Creators map[types.WidgetKind]CreatorFunc

	// Binding is the default binding. Required unless every row gets one
	// from Hooks.GetBinding.
	Binding *Binding

	Hooks Hooks

	// AllowEmptySpaceDrop permits drops below the last row.
	AllowEmptySpaceDrop bool

	// DropEdgeBand is the fraction of a row's height at each edge that maps
	// to AboveRow/BelowRow when OnRow is allowed too. Default: 0.25
	DropEdgeBand float64

	// SingleSelect limits the selection to one row.
	SingleSelect bool

	// SelectionWarnThreshold logs selection changes touching more rows.
	SelectionWarnThreshold int

	// Key maps items to stable strings for SaveState/RestoreState.
	// Default: fmt.Sprint.
	Key func(types.Item) string
}

// OptionsFromConfig fills the tunables of Options from a config file.
// Columns, bindings and hooks stay empty.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ShowRoot:               cfg.Tree.ShowRoot,
		ReleaseOnCollapse:      cfg.ReleaseOnCollapse(),
		DefaultChildPolicy:     cfg.ChildPolicy(),
		RowHeaders:             cfg.Tree.RowHeaders,
		ColumnHeaders:          true,
		Placeholder:            cfg.Tree.Placeholder,
		Prewarm:                cfg.Pool.Prewarm,
		AllowEmptySpaceDrop:    cfg.Drop.AllowEmptySpace,
		DropEdgeBand:           cfg.Drop.EdgeBand,
		SingleSelect:           !cfg.MultiSelect(),
		SelectionWarnThreshold: cfg.Selection.WarnThreshold,
	}
}
