package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainFirstDefiniteAnswerWins(t *testing.T) {
	c := New[int, string]("fallback").
		Add("odd", func(n int) (string, bool) { return "odd", n%2 == 1 }).
		Add("small", func(n int) (string, bool) { return "small", n < 10 })

	out, src := c.Resolve(3)
	require.Equal(t, "odd", out)
	require.Equal(t, "odd", src)

	out, src = c.Resolve(4)
	require.Equal(t, "small", out)
	require.Equal(t, "small", src)

	out, src = c.Resolve(40)
	require.Equal(t, "fallback", out)
	require.Empty(t, src)
}

func TestChainPanickingStepDeclines(t *testing.T) {
	c := New[int, int](0).
		Add("broken", func(int) (int, bool) { panic("host bug") }).
		Add("next", func(n int) (int, bool) { return n * 2, true })

	out, src := c.Resolve(5)
	require.Equal(t, 10, out)
	require.Equal(t, "next", src)
}

func TestChainIgnoresNil(t *testing.T) {
	c := New[int, int](1).Add("nil", nil)
	require.Equal(t, 0, c.Len())
	c.SetFallback(2)
	require.Equal(t, 2, c.Fallback())
}
