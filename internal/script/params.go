package script

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrInvalidArgs is wrapped by every argument check performed by Typed.
var ErrInvalidArgs = errors.New("invalid arguments")

// Typed wraps fn so that its arguments are checked against params before it
// runs. Each declared argument is converted to its type, an omitted one is
// passed as a typed null, and an undeclared one is rejected. A nil params map
// returns fn unchanged.
func Typed(fn sandbox.Func, params map[string]cty.Type) sandbox.Func {
	if params == nil {
		return fn
	}
	return func(self sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
		converted, err := convertArgs(params, args)
		if err != nil {
			return cty.NilVal, err
		}
		return fn(self, converted)
	}
}

func convertArgs(params map[string]cty.Type, args sandbox.Bindings) (sandbox.Bindings, error) {
	var errs []error
	for _, name := range args.Names() {
		if _, ok := params[name]; !ok {
			errs = append(errs, fmt.Errorf("%w: unexpected argument %q", ErrInvalidArgs, name))
		}
	}

	out := make(sandbox.Bindings, len(params))
	for _, name := range slices.Sorted(maps.Keys(params)) {
		ty := params[name]
		v, ok := args[name]
		if !ok || v.IsNull() {
			out[name] = cty.NullVal(ty)
			continue
		}
		cv, err := convert.Convert(v, ty)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: argument %q: %s", ErrInvalidArgs, name, err))
			continue
		}
		out[name] = cv
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
