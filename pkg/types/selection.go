package types

import "fmt"

// SelectionChange is the kind of a selection mutation.
type SelectionChange int

const (
	SelectClear       SelectionChange = iota // empty the whole selection; the range is ignored
	SelectAdd                                // add the range
	SelectRemove                             // remove the range
	SelectClearAndAdd                        // replace the whole selection with the range
)

func (c SelectionChange) String() string {
	switch c {
	case SelectClear:
		return "clear"
	case SelectAdd:
		return "add"
	case SelectRemove:
		return "remove"
	case SelectClearAndAdd:
		return "clear-and-add"
	default:
		return fmt.Sprintf("SelectionChange(%d)", int(c))
	}
}
