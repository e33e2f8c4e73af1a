package hostcall

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/vtree/pkg/types"
)

func TestCallPassesThroughSuccess(t *testing.T) {
	ran := false
	require.NoError(t, Call("hook", func() error { ran = true; return nil }))
	require.True(t, ran)
}

func TestCallWrapsReturnedError(t *testing.T) {
	cause := errors.New("db down")
	err := Call("get-cell-data", func() error { return cause })
	require.ErrorIs(t, err, types.ErrCallback)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "get-cell-data")
}

func TestCallRecoversPanic(t *testing.T) {
	err := Call("get-child-policy", func() error { panic("boom") })
	require.ErrorIs(t, err, types.ErrCallback)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "boom", pe.Value)
	require.NotEmpty(t, pe.Stack)
}

func TestValue(t *testing.T) {
	v, err := Value("ok", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, v)

	v, err = Value("fails", func() (int, error) { return 7, errors.New("nope") })
	require.Error(t, err)
	require.Zero(t, v)

	s, err := Value("panics", func() (string, error) {
		var m map[string]int
		m["x"] = 1
		return "unreachable", nil
	})
	require.ErrorIs(t, err, types.ErrCallback)
	require.Empty(t, s)
}
