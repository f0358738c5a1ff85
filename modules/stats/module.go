// Package stats provides numeric aggregate capabilities over a list binding.
package stats

import (
	"context"
	"fmt"
	"math/big"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// numbers reads args.values as a list of numbers.
func numbers(args sandbox.Bindings) ([]*big.Float, error) {
	v, ok := args["values"]
	if !ok || v.IsNull() {
		return nil, fmt.Errorf("argument 'values' is required")
	}
	list, err := convert.Convert(v, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("argument 'values' must be a list of numbers: %w", err)
	}
	out := make([]*big.Float, 0, list.LengthInt())
	for it := list.ElementIterator(); it.Next(); {
		_, el := it.Element()
		if el.IsNull() {
			return nil, fmt.Errorf("argument 'values' must not contain null")
		}
		out = append(out, el.AsBigFloat())
	}
	return out, nil
}

func total(nums []*big.Float) *big.Float {
	sum := new(big.Float)
	for _, n := range nums {
		sum.Add(sum, n)
	}
	return sum
}

// OnRunSum adds args.values. An empty list sums to 0.
func OnRunSum(_ sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
	nums, err := numbers(args)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberVal(total(nums)), nil
}

// OnRunMean averages args.values. An empty list has no mean and returns the
// empty value.
func OnRunMean(_ sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
	nums, err := numbers(args)
	if err != nil {
		return cty.NilVal, err
	}
	if len(nums) == 0 {
		return cty.NullVal(cty.Number), nil
	}
	mean := total(nums)
	mean.Quo(mean, new(big.Float).SetInt64(int64(len(nums))))
	return cty.NumberVal(mean), nil
}

// Register registers the handlers with the registry.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	if _, err := r.Register(ctx, "sum", registry.Definition{Func: OnRunSum, Description: "Adds a list of numbers."}); err != nil {
		return err
	}
	_, err := r.Register(ctx, "mean", registry.Definition{Func: OnRunMean, Description: "Averages a list of numbers."})
	return err
}
