// Package text provides string capabilities.
package text

import (
	"context"
	"fmt"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func message(args sandbox.Bindings) (cty.Value, error) {
	v, ok := args["message"]
	if !ok || v.IsNull() {
		return cty.NilVal, fmt.Errorf("argument 'message' is required")
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return cty.NilVal, fmt.Errorf("argument 'message': %w", err)
	}
	return s, nil
}

// OnRunEcho returns args.message as a string.
func OnRunEcho(_ sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
	return message(args)
}

// OnRunShout returns args.message upper-cased with an exclamation mark.
func OnRunShout(_ sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
	msg, err := message(args)
	if err != nil {
		return cty.NilVal, err
	}
	upper, err := stdlib.Upper(msg)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.StringVal(upper.AsString() + "!"), nil
}

// Register registers the handlers with the registry.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	defs := []struct {
		name string
		def  registry.Definition
	}{
		{"echo", registry.Definition{Func: OnRunEcho, Description: "Returns the message unchanged."}},
		{"shout", registry.Definition{Func: OnRunShout, Description: "Returns the message upper-cased."}},
	}
	for _, d := range defs {
		if _, err := r.Register(ctx, d.name, d.def); err != nil {
			return err
		}
	}
	return nil
}
