// This file translates the decoded HCL blocks of a scenario into the
// format-agnostic steps defined in the config package.

package hcl_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

func (l *Loader) translateBlock(ctx context.Context, block *hcl.Block, src []byte) (*config.Step, error) {
	step := &config.Step{
		Kind:  config.StepKind(block.Type),
		Label: block.Labels[0],
		Pos:   fmt.Sprintf("%s:%d", block.DefRange.Filename, block.DefRange.Start.Line),
	}
	ctx = ctxlog.With(ctx, "block", block.Type, "label", step.Label)

	var diags hcl.Diagnostics
	switch step.Kind {
	case config.StepCapability:
		var b capabilityBlock
		if diags = gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return nil, diags
		}
		return step, translateCapability(ctx, step, &b, src)

	case config.StepInvoke:
		var b invokeBlock
		if diags = gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return nil, diags
		}
		return step, translateInvoke(ctx, step, &b)

	case config.StepRollback:
		var b rollbackBlock
		diags = gohcl.DecodeBody(block.Body, nil, &b)

	case config.StepFeedback:
		var b feedbackBlock
		diags = gohcl.DecodeBody(block.Body, nil, &b)
		step.Success = b.Success

	case config.StepMetric:
		var b metricBlock
		diags = gohcl.DecodeBody(block.Body, nil, &b)
		step.Value = b.Value
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return step, nil
}

func translateCapability(ctx context.Context, step *config.Step, b *capabilityBlock, src []byte) error {
	if b.Description != nil {
		step.Description = *b.Description
	}
	if !isExprDefined(ctx, b.Returns, "returns") {
		return errors.New(`attribute "returns" is required`)
	}
	step.Returns = b.Returns
	step.ReturnsSource = exprSource(b.Returns, src)

	if isExprDefined(ctx, b.Params, "params") {
		params, err := paramTypes(ctx, b.Params)
		if err != nil {
			return err
		}
		step.Params = params
	}
	return nil
}

func translateInvoke(ctx context.Context, step *config.Step, b *invokeBlock) error {
	step.Args = cty.EmptyObjectVal
	if isExprDefined(ctx, b.Args, "args") {
		args, err := staticValue(b.Args, "args")
		if err != nil {
			return err
		}
		ty := args.Type()
		switch {
		case args.IsNull():
		case ty.IsObjectType() || ty.IsMapType():
			step.Args = args
		default:
			return fmt.Errorf("attribute \"args\": must be an object, got %s", ty.FriendlyName())
		}
	}

	if isExprDefined(ctx, b.Expect, "expect") {
		expect, err := staticValue(b.Expect, "expect")
		if err != nil {
			return err
		}
		step.Expect = &expect
	}

	step.Repeat = 1
	if b.Repeat != nil {
		if *b.Repeat < 1 {
			return errors.New("attribute \"repeat\": must be at least 1")
		}
		step.Repeat = *b.Repeat
	}
	return nil
}
