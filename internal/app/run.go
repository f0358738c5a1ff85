package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/feed"
	"github.com/vk/hotswap/internal/inspect"
	"github.com/vk/hotswap/internal/journal"
	"github.com/vk/hotswap/internal/ledger"
	"gopkg.in/yaml.v3"
)

// Run executes the main application logic: it replays a journal, or applies
// the scenario, prints the summary and, with an inspection port, serves until
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.")
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("Failed to release resources.", "error", err)
		}
	}()

	if a.cfg.Replay != "" {
		return a.replay(ctx)
	}

	if a.cfg.FeedURL != "" {
		if err := a.attachFeed(ctx); err != nil {
			return err
		}
	}

	if a.cfg.Builtins {
		if err := a.registry.RegisterModules(ctx, a.modules...); err != nil {
			return fmt.Errorf("failed to register built-in modules: %w", err)
		}
		a.logger.Debug("Built-in modules registered.", "count", len(a.modules))
	}

	model, err := a.loader.Load(ctx, a.cfg.Scenario...)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	a.logger.Info("Scenario loaded.", "files", len(model.Files), "steps", len(model.Steps))

	a.logger.Info("🚀 Applying scenario...")
	if err := a.apply(ctx, model); err != nil {
		return err
	}
	a.logger.Info("🏁 Scenario finished.")

	if err := a.printSummary(); err != nil {
		return err
	}

	if a.cfg.InspectPort > 0 {
		return a.serve(ctx)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) attachFeed(ctx context.Context) error {
	em, disconnect, err := a.dialFeed(ctx, a.cfg.FeedURL, a.cfg.FeedNamespace)
	if err != nil {
		return fmt.Errorf("failed to connect ledger feed: %w", err)
	}
	a.closers = append(a.closers, func() error {
		disconnect()
		return nil
	})
	a.publisher = feed.NewPublisher(em, a.instance, a.cfg.FeedEvent)
	a.publisher.Attach(ctx, a.ledger)
	return nil
}

func (a *App) serve(ctx context.Context) error {
	srv := inspect.New(inspect.Deps{
		Instance: a.instance,
		Registry: a.registry,
		Ledger:   a.ledger,
		Perf:     a.perf,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})
	if err := srv.Start(a.cfg.InspectPort); err != nil {
		return err
	}
	<-ctx.Done()
	return srv.Close(ctx)
}

func (a *App) printSummary() error {
	s := a.perf.Summary()
	if a.cfg.SummaryFormat == "yaml" {
		enc := yaml.NewEncoder(a.outW)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// replay prints every entry of a file or Redis stream journal, one per line.
func (a *App) replay(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var (
		entries []ledger.Entry
		err     error
	)
	if strings.HasPrefix(a.cfg.Replay, "redis://") || strings.HasPrefix(a.cfg.Replay, "rediss://") {
		client := journal.DialRedis(a.cfg.Replay)
		defer client.Close()
		entries, err = journal.NewRedis(client, a.cfg.RedisStream, a.instance).Replay(ctx)
	} else {
		entries, err = journal.ReadFile(a.cfg.Replay)
	}
	if err != nil {
		return fmt.Errorf("failed to replay journal: %w", err)
	}
	logger.Info("Replaying journal.", "source", a.cfg.Replay, "entries", len(entries))

	for _, e := range entries {
		if _, err := fmt.Fprintln(a.outW, e.String()); err != nil {
			return err
		}
	}
	return nil
}

// errStepFailed marks scenario steps that cannot be applied at all, as
// opposed to rejected definitions and faults, which are recorded.
var errStepFailed = errors.New("scenario step failed")

func stepError(step *config.Step, err error) error {
	return fmt.Errorf("%w: %s %q at %s: %w", errStepFailed, step.Kind, step.Label, step.Pos, err)
}
