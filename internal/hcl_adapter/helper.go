package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the source.
// gohcl fills omitted optional expression fields with a zero-width placeholder,
// so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

// staticValue evaluates expr without variables or functions. Scenario inputs
// are literal data.
func staticValue(expr hcl.Expression, attrName string) (cty.Value, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("attribute %q: %w", attrName, diags)
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("attribute %q: value must be known", attrName)
	}
	return val, nil
}

// exprSource returns the text expr was parsed from.
func exprSource(expr hcl.Expression, src []byte) string {
	r := expr.Range()
	if r.End.Byte > len(src) || r.Start.Byte > r.End.Byte {
		return ""
	}
	return string(r.SliceBytes(src))
}
