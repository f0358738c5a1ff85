package analyzer

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

const (
	// DefaultMaxLineLength is the longest line accepted without a long-line issue.
	DefaultMaxLineLength = 120
	// DefaultComplexityThreshold is the score above which a definition is complex.
	DefaultComplexityThreshold = 10
)

// IssueCode identifies a class of quality issue.
type IssueCode string

const (
	// IssueCatchAll marks a try(...) call that swallows every fault.
	IssueCatchAll IssueCode = "catch-all"
	IssueLongLine IssueCode = "long-line"
	// IssueMissingDoc marks a definition without a description or a leading comment.
	IssueMissingDoc IssueCode = "missing-doc"
	IssueComplex    IssueCode = "complex"
)

// Source is the text of a definition submitted for admission.
type Source struct {
	Name        string
	Text        string
	Description string
}

// Issue is a single finding. Fatal issues reject a definition under strict
// admission.
type Issue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
	Line    int       `json:"line,omitempty"`
	Fatal   bool      `json:"fatal"`
}

// LineCounts splits a source into kinds of lines.
type LineCounts struct {
	Total    int `json:"total"`
	Code     int `json:"code"`
	Comments int `json:"comments"`
	Blank    int `json:"blank"`
}

// Complexity holds the complexity metrics of a source.
type Complexity struct {
	Conditionals int  `json:"conditional_count"`
	NestingDepth int  `json:"nesting_depth"`
	Score        int  `json:"complexity_score"`
	IsComplex    bool `json:"is_complex"`
}

// Report is the outcome of analyzing one Source.
type Report struct {
	Name        string     `json:"name"`
	Functions   []string   `json:"functions"`
	References  []string   `json:"references"`
	Lines       LineCounts `json:"lines_of_code"`
	Complexity  Complexity `json:"complexity"`
	DocCoverage float64    `json:"documentation_coverage"`
	Issues      []Issue    `json:"code_quality_issues"`
}

// Fatal returns the fatal issues of the report.
func (r *Report) Fatal() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Fatal {
			out = append(out, is)
		}
	}
	return out
}

// HasFatal reports whether any issue is fatal.
func (r *Report) HasFatal() bool {
	return len(r.Fatal()) > 0
}

// Analyzer inspects definition sources before admission.
type Analyzer interface {
	Analyze(src Source) (*Report, error)
}

// Default is the built-in Analyzer for expression sources.
type Default struct {
	MaxLineLength       int
	ComplexityThreshold int
}

// New creates a Default analyzer with the standard thresholds.
func New() *Default {
	return &Default{
		MaxLineLength:       DefaultMaxLineLength,
		ComplexityThreshold: DefaultComplexityThreshold,
	}
}

// Analyze parses src.Text as an expression and reports its metrics and issues.
// A source that does not parse is an error, not a report.
func (a *Default) Analyze(src Source) (*Report, error) {
	expr, diags := ParseSource(src.Name, src.Text)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse source of %q: %w", src.Name, diags)
	}

	shape := Inspect(expr)
	lines := countLines(src.Text)

	r := &Report{
		Name:       src.Name,
		Functions:  shape.Functions,
		References: shape.References,
		Lines:      lines,
	}

	r.Complexity.Conditionals = shape.Conditionals
	r.Complexity.NestingDepth = shape.MaxDepth
	r.Complexity.Score = shape.Conditionals + 2*shape.MaxDepth
	r.Complexity.IsComplex = r.Complexity.Score > a.ComplexityThreshold

	documented := strings.TrimSpace(src.Description) != "" || leadingComment(src.Text)
	if documented {
		r.DocCoverage = 100
	}

	for i, line := range strings.Split(src.Text, "\n") {
		if n := len(line); n > a.MaxLineLength {
			r.Issues = append(r.Issues, Issue{
				Code:    IssueLongLine,
				Message: fmt.Sprintf("Line %d: Very long line (%d characters)", i+1, n),
				Line:    i + 1,
			})
		}
	}
	if !documented {
		r.Issues = append(r.Issues, Issue{
			Code:    IssueMissingDoc,
			Message: fmt.Sprintf("Definition '%s': Missing description", src.Name),
		})
	}
	if shape.CatchAll > 0 {
		r.Issues = append(r.Issues, Issue{
			Code:    IssueCatchAll,
			Message: fmt.Sprintf("Found %d try(...) call(s) - faults should not be swallowed unconditionally", shape.CatchAll),
			Fatal:   true,
		})
	}
	if r.Complexity.IsComplex {
		r.Issues = append(r.Issues, Issue{
			Code:    IssueComplex,
			Message: fmt.Sprintf("Complexity score %d exceeds %d", r.Complexity.Score, a.ComplexityThreshold),
		})
	}
	return r, nil
}

// ParseSource parses text as a native-syntax expression.
func ParseSource(name, text string) (hclsyntax.Expression, hcl.Diagnostics) {
	return hclsyntax.ParseExpression([]byte(text), name, hcl.InitialPos)
}

func countLines(text string) LineCounts {
	var c LineCounts
	for _, line := range strings.Split(text, "\n") {
		c.Total++
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			c.Blank++
		case isComment(stripped):
			c.Comments++
		default:
			c.Code++
		}
	}
	return c
}

func leadingComment(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		return isComment(stripped)
	}
	return false
}

func isComment(stripped string) bool {
	return strings.HasPrefix(stripped, "#") || strings.HasPrefix(stripped, "//")
}
