// Package resolve implements ordered resolver chains: each step may decline
// to answer, and the first definite answer wins.
package resolve

import (
	"github.com/joshuapare/vtree/internal/hostcall"
)

// Func answers for in, or reports ok=false to defer to the next step.
type Func[In, Out any] func(in In) (out Out, ok bool)

type step[In, Out any] struct {
	name string
	fn   Func[In, Out]
}

// Chain is an ordered list of resolvers with a fallback answer.
type Chain[In, Out any] struct {
	steps    []step[In, Out]
	fallback Out
}

// New returns an empty chain answering fallback.
func New[In, Out any](fallback Out) *Chain[In, Out] {
	return &Chain[In, Out]{fallback: fallback}
}

// Add appends a resolver with lower priority than those already added.
// A nil fn is ignored.
func (c *Chain[In, Out]) Add(name string, fn Func[In, Out]) *Chain[In, Out] {
	if fn != nil {
		c.steps = append(c.steps, step[In, Out]{name: name, fn: fn})
	}
	return c
}

// SetFallback replaces the answer used when every step declines.
func (c *Chain[In, Out]) SetFallback(v Out) { c.fallback = v }

// Fallback returns the answer used when every step declines.
func (c *Chain[In, Out]) Fallback() Out { return c.fallback }

// Resolve returns the first definite answer and the name of the step that
// gave it ("" for the fallback). A failing step counts as declining.
func (c *Chain[In, Out]) Resolve(in In) (Out, string) {
	for _, s := range c.steps {
		var out Out
		var ok bool
		err := hostcall.Call(s.name, func() error {
			out, ok = s.fn(in)
			return nil
		})
		if err == nil && ok {
			return out, s.name
		}
	}
	return c.fallback, ""
}

// Len reports the number of steps.
func (c *Chain[In, Out]) Len() int { return len(c.steps) }
