package hcl_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/fsutil"
)

// ErrNoScenario is returned when none of the given paths holds an .hcl file.
var ErrNoScenario = errors.New("no scenario files found")

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL scenario loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from paths into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoScenario, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{Files: files}
	parser := hclparse.NewParser()
	for _, path := range files {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}
		steps, err := l.loadFile(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, err)
		}
		model.Steps = append(model.Steps, steps...)
	}

	logger.Debug("HCL loading complete.",
		"capabilities", model.Count(config.StepCapability),
		"invokes", model.Count(config.StepInvoke),
		"steps", len(model.Steps),
	)
	return model, nil
}

// Parse decodes a single scenario held in memory.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	steps, err := l.loadFile(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCL %s: %w", filename, err)
	}
	return &config.Model{Steps: steps, Files: []string{filename}}, nil
}

func (l *Loader) loadFile(ctx context.Context, file *hcl.File) ([]*config.Step, error) {
	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	steps := make([]*config.Step, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		step, err := l.translateBlock(ctx, block, file.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%s %q at %s: %w", block.Type, block.Labels[0], block.DefRange, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}
