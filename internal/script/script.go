// Package script compiles HCL native-syntax expressions into sandbox
// definitions.
//
// An expression sees exactly two root variables: args, an object built from
// the invocation bindings, and self, an object with the name and version of
// the capability it runs as. Only the functions in Functions may be called.
// Anything else is rejected at compile time.
package script

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/hotswap/internal/analyzer"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
)

const (
	// RootArgs is the variable holding the invocation bindings.
	RootArgs = "args"
	// RootSelf is the variable describing the running capability.
	RootSelf = "self"
)

var (
	ErrUnknownFunction = errors.New("call to a function outside the allow-list")
	ErrUnknownVariable = errors.New("reference to a variable other than args or self")
)

// Program is a compiled expression.
type Program struct {
	name   string
	source string
	expr   hclsyntax.Expression
	shape  analyzer.Shape
}

// Compile parses and validates source.
func Compile(name, source string) (*Program, error) {
	expr, diags := analyzer.ParseSource(name, source)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse expression: %w", diags)
	}
	return compile(name, source, expr)
}

// FromExpression validates an expression that was already parsed as part of a
// larger file. source should be the expression's own text.
func FromExpression(name string, expr hcl.Expression, source string) (*Program, error) {
	syn, ok := expr.(hclsyntax.Expression)
	if !ok {
		return nil, fmt.Errorf("expression for %q is not native syntax", name)
	}
	return compile(name, source, syn)
}

func compile(name, source string, expr hclsyntax.Expression) (*Program, error) {
	shape := analyzer.Inspect(expr)

	var errs []error
	for _, fn := range shape.Functions {
		if _, ok := functions[fn]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownFunction, fn))
		}
	}
	for _, root := range shape.Roots {
		if root != RootArgs && root != RootSelf {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownVariable, root))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Program{
		name:   name,
		source: strings.TrimSpace(source),
		expr:   expr,
		shape:  shape,
	}, nil
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// Functions returns the functions the program calls.
func (p *Program) Functions() []string {
	return slices.Clone(p.shape.Functions)
}

// Eval evaluates the program. A null result is the empty outcome, not an error.
func (p *Program) Eval(self sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			RootArgs: argsObject(args),
			RootSelf: cty.ObjectVal(map[string]cty.Value{
				"name":    cty.StringVal(self.Name),
				"version": cty.NumberIntVal(int64(self.Version)),
			}),
		},
		Functions: Functions(),
	}

	val, diags := p.expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return val, nil
}

// Func adapts the program to the sandbox definition signature.
func (p *Program) Func() sandbox.Func {
	return p.Eval
}

func argsObject(args sandbox.Bindings) cty.Value {
	if len(args) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(args))
	for k, v := range args {
		if v == cty.NilVal {
			v = cty.NullVal(cty.DynamicPseudoType)
		}
		attrs[k] = v
	}
	return cty.ObjectVal(attrs)
}
