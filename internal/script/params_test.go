package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/hotswap/internal/sandbox"
)

func capture(got *sandbox.Bindings) sandbox.Func {
	return func(_ sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
		*got = args
		return cty.True, nil
	}
}

func TestTyped_ConvertsAndFillsNulls(t *testing.T) {
	t.Parallel()

	// Arrange
	var seen sandbox.Bindings
	fn := Typed(capture(&seen), map[string]cty.Type{
		"n":   cty.Number,
		"who": cty.String,
	})

	// Act
	_, err := fn(sandbox.Self{Name: "t", Version: 1}, sandbox.Bindings{"n": cty.StringVal("3")})

	// Assert
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.True(t, seen["n"].Equals(cty.NumberIntVal(3)).True())
	assert.True(t, seen["who"].RawEquals(cty.NullVal(cty.String)))
}

func TestTyped_Rejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args sandbox.Bindings
		want string
	}{
		{name: "unexpected", args: sandbox.Bindings{"extra": cty.True}, want: `unexpected argument "extra"`},
		{name: "unconvertible", args: sandbox.Bindings{"n": cty.StringVal("three")}, want: `argument "n"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			called := false
			fn := Typed(func(sandbox.Self, sandbox.Bindings) (cty.Value, error) {
				called = true
				return cty.NilVal, nil
			}, map[string]cty.Type{"n": cty.Number})

			_, err := fn(sandbox.Self{}, tc.args)

			require.ErrorIs(t, err, ErrInvalidArgs)
			assert.Contains(t, err.Error(), tc.want)
			assert.False(t, called)
		})
	}
}

func TestTyped_NilParamsIsIdentity(t *testing.T) {
	t.Parallel()

	var seen sandbox.Bindings
	fn := Typed(capture(&seen), nil)

	_, err := fn(sandbox.Self{}, sandbox.Bindings{"anything": cty.True})

	require.NoError(t, err)
	assert.Contains(t, seen, "anything")
}
