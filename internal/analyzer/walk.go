package analyzer

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Shape is the structural summary of a parsed expression.
type Shape struct {
	// Functions holds every called function name, sorted and unique.
	Functions []string
	// References holds every variable traversal, rendered canonically.
	References []string
	// Roots holds the root variable names referenced, sorted and unique.
	Roots        []string
	MaxDepth     int
	Conditionals int
	// CatchAll counts try(...) calls.
	CatchAll int
}

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, e.g. args.items[0].
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// Inspect collects the Shape of expr.
func Inspect(expr hclsyntax.Expression) Shape {
	var s Shape
	if expr == nil {
		return s
	}

	refs := make(map[string]struct{})
	roots := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		refs[TraversalKey(traversal)] = struct{}{}
		roots[traversal.RootName()] = struct{}{}
	}

	w := &walker{functions: make(map[string]struct{})}
	w.walk(expr, 0)

	s.Functions = sortedKeys(w.functions)
	s.References = sortedKeys(refs)
	s.Roots = sortedKeys(roots)
	s.MaxDepth = w.maxDepth
	s.Conditionals = w.conditionals
	s.CatchAll = w.catchAll
	return s
}

type walker struct {
	functions    map[string]struct{}
	maxDepth     int
	conditionals int
	catchAll     int
}

func (w *walker) enter(depth int) int {
	depth++
	if depth > w.maxDepth {
		w.maxDepth = depth
	}
	return depth
}

// walk recursively visits the AST. Bracketed constructs (calls, tuples,
// objects, parentheses, index and for expressions) increase the depth.
func (w *walker) walk(expr hclsyntax.Expression, depth int) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		w.functions[e.Name] = struct{}{}
		switch e.Name {
		case "try":
			w.catchAll++
			w.conditionals++
		case "can", "coalesce":
			w.conditionals++
		}
		d := w.enter(depth)
		for _, arg := range e.Args {
			w.walk(arg, d)
		}
	case *hclsyntax.BinaryOpExpr:
		w.walk(e.LHS, depth)
		w.walk(e.RHS, depth)
	case *hclsyntax.ConditionalExpr:
		w.conditionals++
		w.walk(e.Condition, depth)
		w.walk(e.TrueResult, depth)
		w.walk(e.FalseResult, depth)
	case *hclsyntax.UnaryOpExpr:
		w.walk(e.Val, depth)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			w.walk(part, depth)
		}
	case *hclsyntax.TemplateWrapExpr:
		w.walk(e.Wrapped, depth)
	case *hclsyntax.TemplateJoinExpr:
		w.walk(e.Tuple, depth)
	case *hclsyntax.TupleConsExpr:
		d := w.enter(depth)
		for _, item := range e.Exprs {
			w.walk(item, d)
		}
	case *hclsyntax.ObjectConsExpr:
		d := w.enter(depth)
		for _, item := range e.Items {
			w.walk(item.KeyExpr, d)
			w.walk(item.ValueExpr, d)
		}
	case *hclsyntax.ObjectConsKeyExpr:
		w.walk(e.Wrapped, depth)
	case *hclsyntax.ForExpr:
		w.conditionals++
		if e.CondExpr != nil {
			w.conditionals++
		}
		d := w.enter(depth)
		w.walk(e.CollExpr, d)
		w.walk(e.KeyExpr, d)
		w.walk(e.ValExpr, d)
		w.walk(e.CondExpr, d)
	case *hclsyntax.IndexExpr:
		w.walk(e.Collection, depth)
		w.walk(e.Key, w.enter(depth))
	case *hclsyntax.RelativeTraversalExpr:
		w.walk(e.Source, depth)
	case *hclsyntax.SplatExpr:
		w.walk(e.Source, depth)
		w.walk(e.Each, depth)
	case *hclsyntax.ParenthesesExpr:
		w.walk(e.Expression, w.enter(depth))
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
