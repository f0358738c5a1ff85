package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
)

// Invoke runs the active definition of name with args. A fault is returned as
// an *ExecutionError and leaves the registry and the ledger untouched.
func (r *Registry) Invoke(ctx context.Context, name string, args sandbox.Bindings) (cty.Value, error) {
	r.mu.RLock()
	c, ok := r.caps[name]
	var fn sandbox.Func
	var version int
	if ok {
		fn = c.active.def.Func
		version = c.active.version
	}
	r.mu.RUnlock()

	if !ok {
		return cty.NilVal, fmt.Errorf("cannot invoke %q: %w", name, ErrNotFound)
	}

	ctx = ctxlog.With(ctx, "capability", name, "version", version)
	val, err := r.exec.Execute(ctx, fn, sandbox.Self{Name: name, Version: version}, args)
	if err != nil {
		var fault *sandbox.Fault
		if !errors.As(err, &fault) {
			fault = &sandbox.Fault{Capability: name, Version: version, Cause: err}
		}
		return cty.NilVal, &ExecutionError{Capability: name, Version: version, Fault: fault}
	}
	return val, nil
}
