package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/vk/hotswap/internal/script"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Invocation outcomes recorded as feedback notes.
const (
	outcomeOK       = "ok"
	outcomeFault    = "fault"
	outcomeMismatch = "mismatch"
)

// apply runs the scenario steps in order. Rejected definitions, failed
// rollbacks and faulted invocations are logged and recorded; only steps that
// cannot be carried out at all stop the run.
func (a *App) apply(ctx context.Context, model *config.Model) error {
	for _, step := range model.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		stepCtx := ctxlog.With(ctx, "step", string(step.Kind), "label", step.Label, "pos", step.Pos)

		var err error
		switch step.Kind {
		case config.StepCapability:
			err = a.applyCapability(stepCtx, step)
		case config.StepInvoke:
			err = a.applyInvoke(stepCtx, step)
		case config.StepRollback:
			a.applyRollback(stepCtx, step)
		case config.StepFeedback:
			a.ledger.RecordFeedback(stepCtx, step.Label, step.Success)
		case config.StepMetric:
			a.perf.UpdateMetric(step.Label, step.Value)
			ctxlog.FromContext(stepCtx).Debug("Metric updated.", "value", step.Value)
		default:
			err = errors.New("unknown step kind")
		}
		if err != nil {
			return stepError(step, err)
		}
	}
	return nil
}

func (a *App) applyCapability(ctx context.Context, step *config.Step) error {
	logger := ctxlog.FromContext(ctx)

	prog, err := script.FromExpression(step.Label, step.Returns, step.ReturnsSource)
	if err != nil {
		return err
	}
	def := registry.Definition{
		Func:        script.Typed(prog.Func(), step.Params),
		Source:      prog.Source(),
		Description: step.Description,
	}

	// Strict names leave the duplicate check to the registry.
	var version int
	if !a.cfg.StrictNames && a.registry.Exists(step.Label) {
		version, err = a.registry.Modify(ctx, step.Label, def)
	} else {
		version, err = a.registry.Register(ctx, step.Label, def)
	}

	var compileErr *registry.CompileError
	if errors.As(err, &compileErr) {
		logger.Warn("Definition not admitted.", "error", err, "issues", len(compileErr.Issues))
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("Capability admitted.", "version", version)
	return nil
}

func (a *App) applyInvoke(ctx context.Context, step *config.Step) error {
	logger := ctxlog.FromContext(ctx)

	args, err := bindingsOf(step.Args)
	if err != nil {
		return err
	}

	results := a.dispatcher.Run(ctx, step.Label, args, step.Repeat)
	for _, res := range results {
		outcome := outcomeOK
		switch {
		case res.Err != nil:
			outcome = outcomeFault
			logger.Warn("Invocation faulted.", "call", res.Index, "error", res.Err)
		case step.Expect != nil && !matches(*step.Expect, res.Value):
			outcome = outcomeMismatch
			logger.Warn("Invocation result differs from expectation.", "call", res.Index,
				"got", display(res.Value), "want", display(*step.Expect))
		default:
			logger.Info("Invocation succeeded.", "call", res.Index, "result", display(res.Value))
		}
		a.ledger.RecordFeedback(ctx, fmt.Sprintf("invoke %s: %s", step.Label, outcome), outcome == outcomeOK)
	}
	return nil
}

func (a *App) applyRollback(ctx context.Context, step *config.Step) {
	logger := ctxlog.FromContext(ctx)
	version, err := a.registry.Rollback(ctx, step.Label)
	if err != nil {
		logger.Warn("Rollback refused.", "error", err)
		return
	}
	logger.Info("Capability rolled back.", "version", version)
}

// bindingsOf turns the object from an invoke block into named arguments.
func bindingsOf(v cty.Value) (sandbox.Bindings, error) {
	if v.IsNull() {
		return sandbox.Bindings{}, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("args must be an object, got %s", ty.FriendlyName())
	}
	out := make(sandbox.Bindings, v.LengthInt())
	for k, val := range v.AsValueMap() {
		out[k] = val
	}
	return out, nil
}

// matches compares a result with an expected value. A null expectation only
// matches the empty outcome. Values of different types are compared after
// converting one to the other's type.
func matches(want, got cty.Value) bool {
	if want.IsNull() || sandbox.IsEmpty(got) {
		return want.IsNull() && sandbox.IsEmpty(got)
	}
	if got.RawEquals(want) {
		return true
	}
	if conv, err := convert.Convert(got, want.Type()); err == nil && conv.RawEquals(want) {
		return true
	}
	if conv, err := convert.Convert(want, got.Type()); err == nil && conv.RawEquals(got) {
		return true
	}
	return false
}

func display(v cty.Value) any {
	native, err := sandbox.ToNative(v)
	if err != nil {
		return v.GoString()
	}
	return native
}
