// This file contains the logic for parsing HCL type expressions (e.g., `string`,
// `list(number)`) into their corresponding cty.Type objects.

package hcl_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// paramTypes reads a `params = { name = type, ... }` attribute.
func paramTypes(ctx context.Context, expr hcl.Expression) (map[string]cty.Type, error) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, fmt.Errorf("params must be an object literal like { name = string }, got %T", expr)
	}
	params := make(map[string]cty.Type, len(obj.Items))
	for _, item := range obj.Items {
		key, err := objectKey(item.KeyExpr)
		if err != nil {
			return nil, fmt.Errorf("in params: %w", err)
		}
		if _, dup := params[key]; dup {
			return nil, fmt.Errorf("in params: duplicate parameter %q", key)
		}
		ty, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return nil, fmt.Errorf("in parameter %q: %w", key, err)
		}
		params[key] = ty
	}
	return params, nil
}

// objectKey extracts a literal key from an object constructor item.
func objectKey(expr hclsyntax.Expression) (string, error) {
	if keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr); ok {
		switch k := keyExpr.Wrapped.(type) {
		case *hclsyntax.ScopeTraversalExpr:
			if len(k.Traversal) == 1 {
				return k.Traversal.RootName(), nil
			}
		case *hclsyntax.TemplateExpr:
			if len(k.Parts) == 1 {
				if lit, isLit := k.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
					return lit.Val.AsString(), nil
				}
			}
		}
	}
	return "", errors.New("keys must be simple identifiers or quoted strings, not complex expressions")
}

// typeExprToCtyType converts an HCL type expression into its cty.Type equivalent.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a function call.", "call", v.Name)

		if v.Name == "object" {
			if len(v.Args) != 1 {
				return cty.DynamicPseudoType, fmt.Errorf("the object() type constructor requires exactly one argument (the object definition), got %d", len(v.Args))
			}
			objExpr, ok := v.Args[0].(*hclsyntax.ObjectConsExpr)
			if !ok {
				return cty.DynamicPseudoType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", v.Args[0])
			}
			attrTypes := make(map[string]cty.Type, len(objExpr.Items))
			for _, item := range objExpr.Items {
				key, err := objectKey(item.KeyExpr)
				if err != nil {
					return cty.DynamicPseudoType, fmt.Errorf("invalid key in object type definition: %w", err)
				}
				valueType, err := typeExprToCtyType(ctx, item.ValueExpr)
				if err != nil {
					return cty.DynamicPseudoType, fmt.Errorf("in object attribute '%s': %w", key, err)
				}
				attrTypes[key] = valueType
			}
			return cty.Object(attrTypes), nil
		}

		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(v.Args))
		}
		elementType, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		if elementType == cty.DynamicPseudoType {
			return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
		}

		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch name := v.Traversal.RootName(); name {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", name)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}
