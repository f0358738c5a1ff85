package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	// Arrange
	a := Source{Name: "v1", Text: "join(\", \", [\n  args.a,\n  args.b,\n])"}
	b := Source{Name: "v2", Text: "upper(join(\", \", [\n  args.a,\n  args.c,\n]))"}

	// Act
	c, err := Compare(a, b)

	// Assert
	require.NoError(t, err)
	assert.False(t, c.Identical)
	assert.Equal(t, []string{"join"}, c.FunctionsA)
	assert.Equal(t, []string{"join", "upper"}, c.FunctionsB)
	assert.Equal(t, []string{"args.a,"}, c.Common)
	assert.Equal(t, []string{"])", "args.b,", "join(\", \", ["}, c.OnlyInA)
	assert.Equal(t, []string{"]))", "args.c,", "upper(join(\", \", ["}, c.OnlyInB)
	assert.InDelta(t, 1.0/7.0, c.Similarity, 1e-9)
}

func TestCompare_Identical(t *testing.T) {
	t.Parallel()

	src := Source{Name: "x", Text: `upper(args.v)`}

	c, err := Compare(src, src)

	require.NoError(t, err)
	assert.True(t, c.Identical)
	assert.Equal(t, 1.0, c.Similarity)
	assert.Empty(t, c.OnlyInA)
}

func TestCompare_ParseError(t *testing.T) {
	t.Parallel()

	_, err := Compare(Source{Name: "ok", Text: "1"}, Source{Name: "bad", Text: "upper("})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}
