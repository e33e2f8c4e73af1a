// Package hostcall is the boundary through which the engine invokes host
// hooks. Hook failures, returned or panicked, come back as callback errors
// so that a single row or cell can degrade without aborting a layout pass.
package hostcall

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/pkg/types"
)

// PanicError records a recovered hook panic.
type PanicError struct {
	Op    string
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
}

// Call runs fn. A returned error or a panic is reported as a callback error.
func Call(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fail(op, &PanicError{Op: op, Value: r, Stack: captureStack()})
		}
	}()
	if cerr := fn(); cerr != nil {
		return fail(op, cerr)
	}
	return nil
}

// Value runs fn and returns its result. On failure the zero value is
// returned with a callback error.
func Value[T any](op string, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fail(op, &PanicError{Op: op, Value: r, Stack: captureStack()})
		}
	}()
	v, err = fn()
	if err != nil {
		var zero T
		return zero, fail(op, err)
	}
	return v, nil
}

func fail(op string, cause error) error {
	logger.Warn("host callback failed", "op", op, "error", cause)
	return types.Wrap(types.ErrCallback, op, cause)
}

func captureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(4, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}
