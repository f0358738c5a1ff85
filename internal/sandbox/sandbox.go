// Package sandbox runs capability definitions against an explicit set of
// bindings.
//
// A definition is a plain Go function. It receives a private copy of the
// bindings it was invoked with and a Self value describing the capability it
// is running as, and nothing else: it has no handle on the registry that owns
// it. Anything a definition raises, whether a returned error or a panic, is
// converted into a *Fault at this boundary and never propagates further.
//
// "Faulted" and "returned an empty value" are distinct outcomes. A definition
// that returns cty.NilVal or a null value has succeeded; IsEmpty reports that
// case.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime/debug"
	"time"

	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// ErrNoDefinition is the cause of a Fault raised for a nil Func.
var ErrNoDefinition = errors.New("no definition to execute")

// Bindings is the complete namespace a definition can see.
type Bindings map[string]cty.Value

// Self identifies the capability a definition is running as.
type Self struct {
	Name    string
	Version int
}

// Func is the fixed signature of every executable capability definition.
type Func func(self Self, args Bindings) (cty.Value, error)

// Observer is notified after every execution. err is nil or a *Fault.
type Observer func(capability string, elapsed time.Duration, err error)

// Option configures an Executor.
type Option func(*Executor)

// WithObserver installs an execution observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// WithClock overrides the clock used to time executions.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// Executor runs definitions. It holds no per-execution state and is safe for
// concurrent use.
type Executor struct {
	observer Observer
	now      func() time.Time
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs fn with a copy of args. The returned error, if any, is always a
// *Fault. ctx is used for logging only; executions are not cancellable.
func (e *Executor) Execute(ctx context.Context, fn Func, self Self, args Bindings) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("capability", self.Name, "version", self.Version)
	start := e.now()

	val, err := e.run(fn, self, args)

	elapsed := e.now().Sub(start)
	if err != nil {
		logger.Debug("Definition faulted.", "error", err, "elapsed", elapsed)
	} else {
		logger.Debug("Definition completed.", "empty", IsEmpty(val), "elapsed", elapsed)
	}
	if e.observer != nil {
		e.observer(self.Name, elapsed, err)
	}
	return val, err
}

func (e *Executor) run(fn Func, self Self, args Bindings) (val cty.Value, err error) {
	if fn == nil {
		return cty.NilVal, newFault(self, ErrNoDefinition)
	}

	defer func() {
		if r := recover(); r != nil {
			val = cty.NilVal
			err = &Fault{
				Capability: self.Name,
				Version:    self.Version,
				Cause:      fmt.Errorf("panic: %v", r),
				Panic:      r,
				Stack:      debug.Stack(),
			}
		}
	}()

	val, err = fn(self, maps.Clone(args))
	if err != nil {
		var fault *Fault
		if errors.As(err, &fault) {
			return cty.NilVal, fault
		}
		return cty.NilVal, newFault(self, err)
	}
	if !val.IsNull() && !val.IsWhollyKnown() {
		return cty.NilVal, newFault(self, errors.New("definition returned a value that is not fully known"))
	}
	return val, nil
}

// IsEmpty reports whether v is the "returned nothing" outcome.
func IsEmpty(v cty.Value) bool {
	return v.IsNull()
}
