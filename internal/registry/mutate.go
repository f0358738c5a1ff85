package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/hotswap/internal/analyzer"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/ledger"
)

type admitMode int

const (
	modeRegister admitMode = iota
	modeModify
)

// Register admits def under name. A new name starts at version 1; an existing
// name is modified unless strict naming is enabled.
func (r *Registry) Register(ctx context.Context, name string, def Definition) (int, error) {
	return r.admit(ctx, name, def, modeRegister)
}

// Modify replaces the definition of an existing capability.
func (r *Registry) Modify(ctx context.Context, name string, def Definition) (int, error) {
	return r.admit(ctx, name, def, modeModify)
}

func (r *Registry) admit(ctx context.Context, name string, def Definition, mode admitMode) (int, error) {
	logger := ctxlog.FromContext(ctx).With("capability", name)

	if err := validateDefinition(name, def); err != nil {
		logger.Warn("Definition failed validation.", "error", err)
		return 0, err
	}
	def.Description = cleanDescription(def.Description)
	if err := r.review(ctx, name, def); err != nil {
		logger.Warn("Definition rejected by admission policy.", "error", err)
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.caps[name]
	switch {
	case !exists && mode == modeModify:
		return 0, fmt.Errorf("cannot modify %q: %w", name, ErrNotFound)
	case exists && mode == modeRegister && r.strictNames:
		return 0, fmt.Errorf("cannot register %q: %w", name, ErrDuplicateName)
	}

	rv := revision{def: def, digest: sourceDigest(def.Source), admittedAt: r.now()}
	ev := ledger.ModificationEvent{Capability: name, At: rv.admittedAt}
	if !exists {
		rv.version = 1
		r.caps[name] = &capability{name: name, active: rv}
		ev.Kind = ledger.Add
	} else {
		rv.version = c.active.version + 1
		ev.Kind = ledger.Modify
		ev.VersionBefore = c.active.version
		c.history = append(c.history, c.active)
		c.active = rv
	}
	ev.VersionAfter = rv.version

	entry := r.ledger.RecordModification(ctx, ev)
	logger.Info("Capability admitted.", "kind", ev.Kind, "version", rv.version, "seq", entry.Seq)
	return rv.version, nil
}

// review runs the analyzer over definitions that carry source text.
func (r *Registry) review(ctx context.Context, name string, def Definition) error {
	if def.Source == "" || r.analyzer == nil {
		return nil
	}
	logger := ctxlog.FromContext(ctx).With("capability", name)

	report, err := r.analyzer.Analyze(analyzer.Source{Name: name, Text: def.Source, Description: def.Description})
	if err != nil {
		if r.admission == AdmissionStrict {
			return &CompileError{Name: name, Reason: "source could not be analyzed", Rejected: true, Cause: err}
		}
		logger.Warn("Source could not be analyzed.", "error", err)
		return nil
	}

	for _, is := range report.Issues {
		logger.Warn("Analyzer issue.", "code", is.Code, "fatal", is.Fatal, "message", is.Message)
	}
	if fatal := report.Fatal(); len(fatal) > 0 && r.admission == AdmissionStrict {
		reasons := make([]string, 0, len(fatal))
		for _, is := range fatal {
			reasons = append(reasons, string(is.Code))
		}
		return &CompileError{
			Name:     name,
			Reason:   "fatal analyzer issues: " + strings.Join(reasons, ", "),
			Rejected: true,
			Issues:   fatal,
		}
	}
	return nil
}

// Rollback restores the previous definition of name.
func (r *Registry) Rollback(ctx context.Context, name string) (int, error) {
	logger := ctxlog.FromContext(ctx).With("capability", name)

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.caps[name]
	if !ok {
		return 0, fmt.Errorf("cannot roll back %q: %w", name, ErrNotFound)
	}
	if len(c.history) == 0 {
		return 0, fmt.Errorf("cannot roll back %q at v%d: %w", name, c.active.version, ErrNoHistory)
	}

	before := c.active.version
	last := len(c.history) - 1
	c.active = c.history[last]
	c.history[last] = revision{}
	c.history = c.history[:last]

	entry := r.ledger.RecordModification(ctx, ledger.ModificationEvent{
		Kind:          ledger.Rollback,
		Capability:    name,
		At:            r.now(),
		VersionBefore: before,
		VersionAfter:  c.active.version,
	})
	logger.Info("Capability rolled back.", "from", before, "to", c.active.version, "seq", entry.Seq)
	return c.active.version, nil
}
