package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/hotswap/internal/app"
	"github.com/vk/hotswap/internal/config"
	"github.com/vk/hotswap/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Module is a capability module a scenario preloads.
type Module = registry.Module

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Scenario describes one integration run.
type Scenario struct {
	// Files maps paths relative to the scenario directory to HCL content.
	Files map[string]string
	// Modules, when set, are registered before the scenario is applied.
	Modules []Module
	// Configure adjusts the settings before the app is built.
	Configure func(*config.Settings)
}

// RunScenario runs s with a background context.
func RunScenario(t *testing.T, s Scenario) *HarnessResult {
	t.Helper()
	return RunScenarioWithContext(context.Background(), t, s)
}

// RunScenarioWithContext writes the scenario files to a temporary directory
// and runs a fresh App over it.
func RunScenarioWithContext(ctx context.Context, t *testing.T, s Scenario) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range s.Files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	settings := config.DefaultSettings()
	settings.LogLevel = "debug"
	if s.Configure != nil {
		s.Configure(&settings)
	}
	var opts []app.Option
	if len(s.Modules) > 0 {
		settings.Builtins = true
		opts = append(opts, app.WithModules(s.Modules...))
	}

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	testApp, err := app.NewApp(out, logs, &app.Config{Scenario: []string{dir}, Settings: settings}, opts...)
	require.NoError(t, err)

	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("application run panicked | %v", r)
			}
		}()
		runErr = testApp.Run(ctx)
	}()

	if os.Getenv("HOTSWAP_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}

	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		App:       testApp,
	}
}
