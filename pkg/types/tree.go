package types

import (
	"context"
	"fmt"
	"strings"
)

// Item is an opaque handle to a logical item supplied by the host. Items must
// be comparable; rows are indexed by item identity.
type Item = any

// ItemGraph is the adapter through which the engine reads the host's item
// hierarchy. Children may block; Parent must be cheap.
type ItemGraph interface {
	// Children returns the ordered children of item. An empty slice means the
	// item is a leaf.
	Children(ctx context.Context, item Item) ([]Item, error)
	// Parent returns the parent of item and false when item is a root.
	Parent(item Item) (Item, bool)
}

// ChildHinter is an optional ItemGraph extension that reports whether an
// item may have children without loading them.
type ChildHinter interface {
	HasChildren(item Item) bool
}

// ChildPolicy controls when a row's children are loaded.
type ChildPolicy int

const (
	// PolicyNormal loads children when the row is first displayed.
	PolicyNormal ChildPolicy = iota
	// PolicyAutoExpand loads on first display and expands when children exist.
	PolicyAutoExpand
	// PolicyLoadOnExpand defers loading until the user expands the row.
	PolicyLoadOnExpand
)

func (p ChildPolicy) String() string {
	switch p {
	case PolicyNormal:
		return "normal"
	case PolicyAutoExpand:
		return "auto-expand"
	case PolicyLoadOnExpand:
		return "load-on-expand"
	default:
		return fmt.Sprintf("ChildPolicy(%d)", int(p))
	}
}

// ParseChildPolicy parses the String form of a ChildPolicy. Underscores and
// case are ignored.
func ParseChildPolicy(s string) (ChildPolicy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "", "normal":
		return PolicyNormal, nil
	case "auto-expand", "autoexpand":
		return PolicyAutoExpand, nil
	case "load-on-expand", "loadonexpand":
		return PolicyLoadOnExpand, nil
	}
	return PolicyNormal, &Error{Kind: ErrKindConfig, Msg: "unknown child policy " + s}
}

// LoadState tracks child materialization of a row.
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// SortDirection orders the children of every row by the sort column.
type SortDirection int

const (
	SortAscending SortDirection = iota
	SortDescending
)

func (d SortDirection) String() string {
	switch d {
	case SortAscending:
		return "ascending"
	case SortDescending:
		return "descending"
	default:
		return fmt.Sprintf("SortDirection(%d)", int(d))
	}
}

// Reverse returns the opposite direction.
func (d SortDirection) Reverse() SortDirection {
	if d == SortDescending {
		return SortAscending
	}
	return SortDescending
}
