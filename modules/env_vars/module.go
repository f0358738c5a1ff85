package env_vars

import (
	"context"
	"errors"
	"os"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Lookup reads a variable. Nil uses os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// OnRunEnvVars returns the value of the variable named by args.name, or the
// empty value when it is not set.
func (m *Module) OnRunEnvVars(_ sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
	name, ok := args["name"]
	if !ok || name.IsNull() || !name.Type().Equals(cty.String) {
		return cty.NilVal, errors.New("env_vars requires a string argument 'name'")
	}
	lookup := m.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, found := lookup(name.AsString())
	if !found {
		return cty.NullVal(cty.String), nil
	}
	return cty.StringVal(v), nil
}

// Register registers the handler with the registry.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	_, err := r.Register(ctx, "env_vars", registry.Definition{
		Func:        m.OnRunEnvVars,
		Description: "Reads one environment variable; unset is the empty value.",
	})
	return err
}
