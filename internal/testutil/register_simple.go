package testutil

import (
	"context"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single Go capability.
type SimpleModule struct {
	Name        string
	Description string
	Func        sandbox.Func
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(ctx context.Context, r *registry.Registry) error {
	_, err := r.Register(ctx, m.Name, registry.Definition{Func: m.Func, Description: m.Description})
	return err
}
