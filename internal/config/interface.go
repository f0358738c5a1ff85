package config

import (
	"context"
)

// Loader is the interface for a format-specific scenario loader.
type Loader interface {
	// Load reads every scenario file reachable from paths and returns their
	// steps in file order, then source order within a file.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
