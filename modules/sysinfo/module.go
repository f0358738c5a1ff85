// Package sysinfo reports host and process information, both as a capability
// and for the inspection server.
package sysinfo

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Memory is the Go runtime's view of process memory.
type Memory struct {
	AllocBytes uint64 `json:"alloc_bytes" cty:"alloc_bytes"`
	SysBytes   uint64 `json:"sys_bytes" cty:"sys_bytes"`
	HeapInuse  uint64 `json:"heap_inuse_bytes" cty:"heap_inuse_bytes"`
	Alloc      string `json:"alloc" cty:"alloc"`
	Sys        string `json:"sys" cty:"sys"`
	NumGC      uint32 `json:"num_gc" cty:"num_gc"`
}

// Info is one snapshot.
type Info struct {
	Platform     string `json:"platform" cty:"platform"`
	Architecture string `json:"architecture" cty:"architecture"`
	Hostname     string `json:"hostname" cty:"hostname"`
	GoVersion    string `json:"go_version" cty:"go_version"`
	CPUs         int    `json:"cpus" cty:"cpus"`
	Goroutines   int    `json:"goroutines" cty:"goroutines"`
	PID          int    `json:"pid" cty:"pid"`
	Memory       Memory `json:"memory" cty:"memory"`
	Timestamp    string `json:"timestamp" cty:"timestamp"`
}

// Snapshot reads the current host and process information.
func Snapshot() Info {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	host, err := os.Hostname()
	if err != nil {
		host = "Unknown"
	}
	return Info{
		Platform:     runtime.GOOS,
		Architecture: runtime.GOARCH,
		Hostname:     host,
		GoVersion:    runtime.Version(),
		CPUs:         runtime.NumCPU(),
		Goroutines:   runtime.NumGoroutine(),
		PID:          os.Getpid(),
		Memory: Memory{
			AllocBytes: ms.Alloc,
			SysBytes:   ms.Sys,
			HeapInuse:  ms.HeapInuse,
			Alloc:      humanize.IBytes(ms.Alloc),
			Sys:        humanize.IBytes(ms.Sys),
			NumGC:      ms.NumGC,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

var infoType = cty.Object(map[string]cty.Type{
	"platform":     cty.String,
	"architecture": cty.String,
	"hostname":     cty.String,
	"go_version":   cty.String,
	"cpus":         cty.Number,
	"goroutines":   cty.Number,
	"pid":          cty.Number,
	"timestamp":    cty.String,
	"memory": cty.Object(map[string]cty.Type{
		"alloc_bytes":      cty.Number,
		"sys_bytes":        cty.Number,
		"heap_inuse_bytes": cty.Number,
		"alloc":            cty.String,
		"sys":              cty.String,
		"num_gc":           cty.Number,
	}),
})

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunSysinfo returns a Snapshot as an object.
func OnRunSysinfo(_ sandbox.Self, _ sandbox.Bindings) (cty.Value, error) {
	return gocty.ToCtyValue(Snapshot(), infoType)
}

// Register registers the handler with the registry.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	_, err := r.Register(ctx, "sysinfo", registry.Definition{
		Func:        OnRunSysinfo,
		Description: "Reports host and process information.",
	})
	return err
}
