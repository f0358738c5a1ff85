package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/executor"
	"github.com/vk/hotswap/internal/feed"
	"github.com/vk/hotswap/internal/hcl_adapter"
	"github.com/vk/hotswap/internal/journal"
	"github.com/vk/hotswap/internal/ledger"
	"github.com/vk/hotswap/internal/observability"
	"github.com/vk/hotswap/internal/perf"
	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
)

// FeedDialer connects the ledger feed. The returned function disconnects.
type FeedDialer func(ctx context.Context, url, namespace string) (feed.Emitter, func(), error)

func dialSocketIO(ctx context.Context, url, namespace string) (feed.Emitter, func(), error) {
	sock, err := feed.Dial(ctx, url, namespace)
	if err != nil {
		return nil, nil, err
	}
	return sock, func() { sock.Disconnect() }, nil
}

// Option customizes an App, mainly for tests.
type Option func(*App)

// WithModules replaces the built-in modules registered when builtins are on.
func WithModules(modules ...registry.Module) Option {
	return func(a *App) {
		a.modules = modules
	}
}

// WithFeedDialer replaces the socket.io dialer.
func WithFeedDialer(d FeedDialer) Option {
	return func(a *App) {
		a.dialFeed = d
	}
}

// WithLoader replaces the HCL scenario loader.
func WithLoader(l config.Loader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	cfg      *Config
	outW     io.Writer
	logger   *slog.Logger
	instance string

	ledger     *ledger.Ledger
	registry   *registry.Registry
	perf       *perf.Aggregator
	metrics    *observability.Metrics
	dispatcher *executor.Executor
	loader     config.Loader
	modules    []registry.Module
	dialFeed   FeedDialer
	publisher  *feed.Publisher

	closers []func() error
}

// NewApp is the constructor for the main application. The summary and replay
// output go to outW, logs go to logW. Every App owns an isolated logger,
// ledger, registry and metrics registry.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	instance := uuid.NewString()
	logger = logger.With("instance", instance)
	logger.Debug("Logger configured successfully.")

	a := &App{
		cfg:      cfg,
		outW:     outW,
		logger:   logger,
		instance: instance,
		loader:   hcl_adapter.NewLoader(),
		dialFeed: dialSocketIO,
	}
	a.modules = coreModules(logger)
	for _, opt := range opts {
		opt(a)
	}

	var ledgerOpts []ledger.Option
	switch {
	case cfg.JournalPath != "":
		j, err := journal.OpenFile(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		a.closers = append(a.closers, j.Close)
		ledgerOpts = append(ledgerOpts, ledger.WithJournal(j))
		logger.Debug("File journal opened.", "path", cfg.JournalPath)
	case cfg.RedisAddr != "":
		client := journal.DialRedis(cfg.RedisAddr)
		a.closers = append(a.closers, client.Close)
		ledgerOpts = append(ledgerOpts, ledger.WithJournal(journal.NewRedis(client, cfg.RedisStream, instance)))
		logger.Debug("Redis journal configured.", "addr", cfg.RedisAddr, "stream", cfg.RedisStream)
	}
	a.ledger = ledger.New(ledgerOpts...)
	// Closers run in reverse, so the journal queue drains before the journal closes.
	a.closers = append(a.closers, func() error {
		a.ledger.Close()
		return nil
	})

	a.metrics = observability.New(instance)
	exec := sandbox.New(sandbox.WithObserver(a.metrics.ObserveInvocation))

	admission := registry.AdmissionPermissive
	if cfg.Admission == "strict" {
		admission = registry.AdmissionStrict
	}
	a.registry = registry.New(
		registry.WithLedger(a.ledger),
		registry.WithExecutor(exec),
		registry.WithAdmission(admission),
		registry.WithStrictNames(cfg.StrictNames),
	)
	a.perf = perf.New(instance, a.registry, a.ledger)
	a.metrics.MustRegister(perf.NewCollector(a.perf))
	a.dispatcher = executor.New(a.registry, cfg.Workers)

	logger.Debug("App assembled.", "admission", admission.String(), "workers", a.dispatcher.Workers())
	return a, nil
}

// Instance returns the id tagging this App's journal records and metrics.
func (a *App) Instance() string {
	return a.instance
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Ledger returns the application's ledger.
func (a *App) Ledger() *ledger.Ledger {
	return a.ledger
}

// Perf returns the application's performance aggregator.
func (a *App) Perf() *perf.Aggregator {
	return a.perf
}

// Close stops the feed and releases journals. It is safe to call twice.
func (a *App) Close() error {
	if a.publisher != nil {
		a.publisher.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
