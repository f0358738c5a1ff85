package testutil

import (
	"context"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
)

// NoOpModule registers a "noop" capability that ignores its arguments and
// returns the empty value.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(ctx context.Context, r *registry.Registry) error {
	_, err := r.Register(ctx, "noop", registry.Definition{
		Func: func(sandbox.Self, sandbox.Bindings) (cty.Value, error) {
			return cty.NilVal, nil
		},
	})
	return err
}
