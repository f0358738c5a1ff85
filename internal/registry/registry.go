package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vk/hotswap/internal/analyzer"
	"github.com/vk/hotswap/internal/ledger"
	"github.com/vk/hotswap/internal/sandbox"
)

// Admission selects how analyzer findings affect admission.
type Admission int

const (
	// AdmissionPermissive logs analyzer findings and admits anyway.
	AdmissionPermissive Admission = iota
	// AdmissionStrict rejects definitions with fatal analyzer findings.
	AdmissionStrict
)

// String implements fmt.Stringer.
func (a Admission) String() string {
	if a == AdmissionStrict {
		return "strict"
	}
	return "permissive"
}

// Definition is a proposed implementation for a capability.
type Definition struct {
	Func sandbox.Func
	// Source is the text the definition was built from, if any. Only
	// definitions with a Source are analyzed.
	Source      string
	Description string
}

// Revision describes one version of a capability.
type Revision struct {
	Version     int       `json:"version"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	Digest      string    `json:"digest,omitempty"`
	AdmittedAt  time.Time `json:"admitted_at"`
	Active      bool      `json:"active"`
}

// Listing is one row of List.
type Listing struct {
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	Description string    `json:"description,omitempty"`
	AdmittedAt  time.Time `json:"admitted_at"`
}

type revision struct {
	version    int
	def        Definition
	digest     string
	admittedAt time.Time
}

func (rv revision) export(active bool) Revision {
	return Revision{
		Version:     rv.version,
		Description: rv.def.Description,
		Source:      rv.def.Source,
		Digest:      rv.digest,
		AdmittedAt:  rv.admittedAt,
		Active:      active,
	}
}

type capability struct {
	name    string
	active  revision
	history []revision
}

// Module is implemented by packages that contribute built-in capabilities.
type Module interface {
	Register(ctx context.Context, r *Registry) error
}

// Option configures a Registry.
type Option func(*Registry)

// WithAdmission sets the admission policy.
func WithAdmission(a Admission) Option {
	return func(r *Registry) {
		r.admission = a
	}
}

// WithAnalyzer sets the analyzer consulted for definitions with a Source.
func WithAnalyzer(a analyzer.Analyzer) Option {
	return func(r *Registry) {
		r.analyzer = a
	}
}

// WithLedger sets the ledger transitions are recorded in.
func WithLedger(l *ledger.Ledger) Option {
	return func(r *Registry) {
		r.ledger = l
	}
}

// WithExecutor sets the executor used by Invoke.
func WithExecutor(e *sandbox.Executor) Option {
	return func(r *Registry) {
		r.exec = e
	}
}

// WithStrictNames makes Register fail with ErrDuplicateName for an existing
// name instead of modifying it.
func WithStrictNames(strict bool) Option {
	return func(r *Registry) {
		r.strictNames = strict
	}
}

// WithClock overrides the clock used to stamp admissions.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]*capability

	ledger      *ledger.Ledger
	exec        *sandbox.Executor
	analyzer    analyzer.Analyzer
	admission   Admission
	strictNames bool
	now         func() time.Time
}

// New creates an empty Registry. Without options it owns a fresh ledger, a
// default executor and the default analyzer under permissive admission.
func New(opts ...Option) *Registry {
	r := &Registry{
		caps: make(map[string]*capability),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ledger == nil {
		r.ledger = ledger.New()
	}
	if r.exec == nil {
		r.exec = sandbox.New()
	}
	if r.analyzer == nil {
		r.analyzer = analyzer.New()
	}
	return r
}

// Ledger returns the ledger the registry records into.
func (r *Registry) Ledger() *ledger.Ledger {
	return r.ledger
}

// Admission returns the configured admission policy.
func (r *Registry) Admission() Admission {
	return r.admission
}

// List returns every capability sorted by name.
func (r *Registry) List() []Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Listing, 0, len(r.caps))
	for _, c := range r.caps {
		list = append(list, Listing{
			Name:        c.name,
			Version:     c.active.version,
			Description: c.active.def.Description,
			AdmittedAt:  c.active.admittedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.caps[name]
	return ok
}

// Count returns the number of registered capabilities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caps)
}

// Version returns the active version of name.
func (r *Registry) Version(name string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	if !ok {
		return 0, ErrNotFound
	}
	return c.active.version, nil
}

// History returns every retained revision of name, oldest first. The last
// element is the active one.
func (r *Registry) History(name string) ([]Revision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Revision, 0, len(c.history)+1)
	for _, rv := range c.history {
		out = append(out, rv.export(false))
	}
	return append(out, c.active.export(true)), nil
}

// RegisterModules registers every module in order and stops at the first
// failure.
func (r *Registry) RegisterModules(ctx context.Context, modules ...Module) error {
	for _, mod := range modules {
		if err := mod.Register(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
