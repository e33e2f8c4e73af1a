package types

import "errors"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindContract ErrKind = iota // caller broke an API contract (wrong widget kind, invisible row)
	ErrKindCallback                // a host hook returned an error or panicked
	ErrKindState                   // operation invalid for the current state (disposed, re-entrant edit)
	ErrKindNotFound                // missing item, column, editor
	ErrKindAdapter                 // item graph adapter failed to produce children
	ErrKindConfig                  // invalid configuration
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindContract:
		return "contract"
	case ErrKindCallback:
		return "callback"
	case ErrKindState:
		return "state"
	case ErrKindNotFound:
		return "not found"
	case ErrKindAdapter:
		return "adapter"
	case ErrKindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Op   string // operation that failed, e.g. "bind" or "expand"
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so that errors wrapping a
// sentinel with extra context still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

// Wrap returns a copy of sentinel annotated with op and cause.
func Wrap(sentinel *Error, op string, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Op: op, Msg: sentinel.Msg, Err: cause}
}

// KindOf reports the ErrKind of err, and false when err carries no *Error.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries an *Error of kind k.
func IsKind(err error, k ErrKind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// Sentinels commonly returned by the engine.
var (
	// ErrWrongWidgetKind indicates a widget was bound to a slot of another kind.
	ErrWrongWidgetKind = &Error{Kind: ErrKindContract, Msg: "widget kind does not match slot"}
	// ErrNotVisible indicates a row or index outside the current flattening.
	ErrNotVisible = &Error{Kind: ErrKindContract, Msg: "row is not visible"}
	// ErrNilItem indicates a nil item handle.
	ErrNilItem = &Error{Kind: ErrKindContract, Msg: "nil item"}
	// ErrDuplicate indicates a typed container already holds an entry with that name.
	ErrDuplicate = &Error{Kind: ErrKindContract, Msg: "duplicate entry"}
	// ErrReentrantEdit indicates an edit was started from inside its own commit.
	ErrReentrantEdit = &Error{Kind: ErrKindState, Msg: "re-entrant edit activation"}
	// ErrDisposed indicates use of a tree after Dispose.
	ErrDisposed = &Error{Kind: ErrKindState, Msg: "tree is disposed"}
	// ErrNoActiveEdit indicates commit or cancel without an active editor.
	ErrNoActiveEdit = &Error{Kind: ErrKindState, Msg: "no active edit"}
	// ErrNotFound indicates a missing item, row or column.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrNoEditor indicates a column names an editor that is not registered.
	ErrNoEditor = &Error{Kind: ErrKindNotFound, Msg: "no editor registered"}
	// ErrUnknownValue indicates a lookup converter met a value outside its table.
	ErrUnknownValue = &Error{Kind: ErrKindNotFound, Msg: "value not in lookup table"}
	// ErrCallback indicates a host hook failed.
	ErrCallback = &Error{Kind: ErrKindCallback, Msg: "host callback failed"}
	// ErrAdapter indicates the item graph adapter failed.
	ErrAdapter = &Error{Kind: ErrKindAdapter, Msg: "item graph adapter failed"}
)
