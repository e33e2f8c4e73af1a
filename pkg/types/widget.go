package types

import "fmt"

// WidgetKind is the closed set of pooled visual element kinds.
type WidgetKind int

const (
	WidgetRow WidgetKind = iota
	WidgetCell
	WidgetHeader // row header
	WidgetExpansion
	WidgetDivider
	WidgetColumnHeader
)

// WidgetKinds lists every kind in declaration order.
var WidgetKinds = []WidgetKind{
	WidgetRow, WidgetCell, WidgetHeader, WidgetExpansion, WidgetDivider, WidgetColumnHeader,
}

func (k WidgetKind) String() string {
	switch k {
	case WidgetRow:
		return "row"
	case WidgetCell:
		return "cell"
	case WidgetHeader:
		return "header"
	case WidgetExpansion:
		return "expansion"
	case WidgetDivider:
		return "divider"
	case WidgetColumnHeader:
		return "column-header"
	default:
		return fmt.Sprintf("WidgetKind(%d)", int(k))
	}
}

// RowScoped reports whether widgets of this kind occupy a per-row slot
// (as opposed to per-cell or per-column).
func (k WidgetKind) RowScoped() bool {
	return k == WidgetRow || k == WidgetHeader || k == WidgetExpansion || k == WidgetDivider
}

// AutoSizePolicy controls how a column reacts to content width.
type AutoSizePolicy int

const (
	AutoSizeManual       AutoSizePolicy = iota // width only changes when set
	AutoSizeIncrease                           // grows to fit, never shrinks
	AutoSizeFit                                // always fits content
)

func (p AutoSizePolicy) String() string {
	switch p {
	case AutoSizeManual:
		return "manual"
	case AutoSizeIncrease:
		return "auto-increase"
	case AutoSizeFit:
		return "auto-size"
	default:
		return fmt.Sprintf("AutoSizePolicy(%d)", int(p))
	}
}

// EditorDisplayMode says when an editor control is attached to a cell.
type EditorDisplayMode int

const (
	// DisplayOnEdit attaches the control only while the cell is being edited.
	DisplayOnEdit EditorDisplayMode = iota
	// DisplayAlways keeps a control attached while the cell is laid out.
	DisplayAlways
)

func (m EditorDisplayMode) String() string {
	if m == DisplayAlways {
		return "always"
	}
	return "on-edit"
}

// EditState is the lifecycle state of a cell edit session.
type EditState int

const (
	EditInactive EditState = iota
	EditActivating
	EditActive
	EditCommitting
	EditCancelled
)

func (s EditState) String() string {
	switch s {
	case EditInactive:
		return "inactive"
	case EditActivating:
		return "activating"
	case EditActive:
		return "active"
	case EditCommitting:
		return "committing"
	case EditCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

// EditTrigger is the user action that started or ended an edit.
type EditTrigger int

const (
	TriggerAPI EditTrigger = iota
	TriggerClick
	TriggerEnter
	TriggerTab
	TriggerFocusLoss
	TriggerNavigate
	TriggerEscape
)

func (t EditTrigger) String() string {
	switch t {
	case TriggerAPI:
		return "api"
	case TriggerClick:
		return "click"
	case TriggerEnter:
		return "enter"
	case TriggerTab:
		return "tab"
	case TriggerFocusLoss:
		return "focus-loss"
	case TriggerNavigate:
		return "navigate"
	case TriggerEscape:
		return "escape"
	default:
		return fmt.Sprintf("EditTrigger(%d)", int(t))
	}
}
