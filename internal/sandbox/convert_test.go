package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFromNative(t *testing.T) {
	t.Parallel()

	// Act
	b, err := FromNative(map[string]any{
		"who":   "World",
		"n":     3,
		"flag":  true,
		"none":  nil,
		"items": []any{1, "two"},
		"obj":   map[string]any{"k": "v"},
		"raw":   cty.StringVal("kept"),
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, b["who"].RawEquals(cty.StringVal("World")))
	assert.True(t, b["n"].RawEquals(cty.NumberIntVal(3)))
	assert.True(t, b["flag"].RawEquals(cty.True))
	assert.True(t, b["none"].IsNull())
	assert.True(t, b["items"].Type().IsTupleType())
	assert.True(t, b["obj"].Type().IsObjectType())
	assert.True(t, b["raw"].RawEquals(cty.StringVal("kept")))
}

func TestFromNative_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := FromNative(map[string]any{"ch": make(chan int)})

	assert.ErrorContains(t, err, "binding 'ch'")
}

func TestToNative(t *testing.T) {
	t.Parallel()

	v := cty.ObjectVal(map[string]cty.Value{
		"name":  cty.StringVal("greet"),
		"score": cty.NumberFloatVal(0.5),
		"ok":    cty.True,
		"tags":  cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
		"none":  cty.NullVal(cty.String),
	})

	got, err := ToNative(v)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":  "greet",
		"score": 0.5,
		"ok":    true,
		"tags":  []any{"a", "b"},
		"none":  nil,
	}, got)
}

func TestToNative_Empty(t *testing.T) {
	t.Parallel()

	got, err := ToNative(cty.NilVal)

	require.NoError(t, err)
	assert.Nil(t, got)
}
