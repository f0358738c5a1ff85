package app

import (
	"log/slog"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/modules/env_vars"
	"github.com/vk/hotswap/modules/print"
	"github.com/vk/hotswap/modules/stats"
	"github.com/vk/hotswap/modules/sysinfo"
	"github.com/vk/hotswap/modules/text"
)

// coreModules is the definitive list of built-in capabilities compiled into
// the hotswap binary.
func coreModules(logger *slog.Logger) []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&print.Module{Logger: logger},
		&text.Module{},
		&stats.Module{},
		&sysinfo.Module{},
	}
}
