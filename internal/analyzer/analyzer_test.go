package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCodes(r *Report) []IssueCode {
	codes := make([]IssueCode, 0, len(r.Issues))
	for _, is := range r.Issues {
		codes = append(codes, is.Code)
	}
	return codes
}

func TestAnalyze_CleanSource(t *testing.T) {
	t.Parallel()

	// Act
	r, err := New().Analyze(Source{
		Name:        "greet",
		Text:        `upper("Hello, ${args.who}")`,
		Description: "Greets someone loudly.",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"upper"}, r.Functions)
	require.Len(t, r.References, 1)
	assert.Contains(t, r.References[0], "who")
	assert.Equal(t, 1, r.Complexity.NestingDepth)
	assert.Equal(t, 0, r.Complexity.Conditionals)
	assert.Equal(t, 2, r.Complexity.Score)
	assert.False(t, r.Complexity.IsComplex)
	assert.Equal(t, 100.0, r.DocCoverage)
	assert.Empty(t, r.Issues)
	assert.False(t, r.HasFatal())
}

func TestAnalyze_CatchAllIsFatal(t *testing.T) {
	t.Parallel()

	r, err := New().Analyze(Source{Name: "swallow", Text: `try(args.x, "none")`})

	require.NoError(t, err)
	assert.Equal(t, []IssueCode{IssueMissingDoc, IssueCatchAll}, issueCodes(r))
	require.True(t, r.HasFatal())
	assert.Equal(t, IssueCatchAll, r.Fatal()[0].Code)
	assert.Equal(t, 0.0, r.DocCoverage)
}

func TestAnalyze_Complex(t *testing.T) {
	t.Parallel()

	r, err := New().Analyze(Source{
		Name:        "deep",
		Text:        `upper(lower(upper(lower(upper(lower(args.x))))))`,
		Description: "Deeply nested.",
	})

	require.NoError(t, err)
	assert.Equal(t, 6, r.Complexity.NestingDepth)
	assert.Equal(t, 12, r.Complexity.Score)
	assert.True(t, r.Complexity.IsComplex)
	assert.Equal(t, []IssueCode{IssueComplex}, issueCodes(r))
	assert.False(t, r.HasFatal())
}

func TestAnalyze_LongLine(t *testing.T) {
	t.Parallel()

	text := `"` + strings.Repeat("a", 128) + `"`

	r, err := New().Analyze(Source{Name: "long", Text: text, Description: "Long."})

	require.NoError(t, err)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, IssueLongLine, r.Issues[0].Code)
	assert.Equal(t, 1, r.Issues[0].Line)
	assert.Contains(t, r.Issues[0].Message, "130 characters")
}

func TestAnalyze_ParseError(t *testing.T) {
	t.Parallel()

	_, err := New().Analyze(Source{Name: "broken", Text: `upper(`})

	assert.ErrorContains(t, err, `"broken"`)
}

func TestInspect_ForExpression(t *testing.T) {
	t.Parallel()

	// Arrange
	expr, diags := ParseSource("t", `[for x in args.items : upper(x) if x != ""]`)
	require.False(t, diags.HasErrors(), diags.Error())

	// Act
	s := Inspect(expr)

	// Assert
	assert.Equal(t, []string{"args"}, s.Roots)
	assert.Equal(t, []string{"upper"}, s.Functions)
	assert.Equal(t, 2, s.Conditionals)
	assert.Equal(t, 2, s.MaxDepth)
}

func TestInspect_Roots(t *testing.T) {
	t.Parallel()

	expr, diags := ParseSource("t", `"${args.who} from ${self.name}"`)
	require.False(t, diags.HasErrors(), diags.Error())

	s := Inspect(expr)

	assert.Equal(t, []string{"args", "self"}, s.Roots)
	assert.Empty(t, s.Functions)
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	text := "# doc\n\nupper(x)\n// more"

	c := countLines(text)

	assert.Equal(t, LineCounts{Total: 4, Code: 1, Comments: 2, Blank: 1}, c)
	assert.True(t, leadingComment(text))
	assert.False(t, leadingComment("upper(x)"))
}
