package print

import (
	"context"
	"log/slog"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Logger receives the printed bindings. Nil uses slog.Default.
	Logger *slog.Logger
}

// OnRunPrint logs every binding in name order and returns the empty value.
func (m *Module) OnRunPrint(self sandbox.Self, args sandbox.Bindings) (cty.Value, error) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("capability", self.Name, "version", self.Version)

	if len(args) == 0 {
		logger.Info("Printing input", "value", "(null)")
		return cty.NilVal, nil
	}
	for _, k := range args.Names() {
		native, err := sandbox.ToNative(args[k])
		if err != nil {
			return cty.NilVal, err
		}
		logger.Info("Printing input", "key", k, "value", native)
	}
	return cty.NilVal, nil
}

// Register registers the handler with the registry.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	_, err := r.Register(ctx, "print", registry.Definition{
		Func:        m.OnRunPrint,
		Description: "Logs every argument and returns nothing.",
	})
	return err
}
