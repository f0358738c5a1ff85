package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hotswap/internal/config"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, exit, err := Parse([]string{"scenario.hcl"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, []string{"scenario.hcl"}, cfg.Scenario)
	assert.Equal(t, config.DefaultSettings(), cfg.Settings)
}

func TestParse_ScenarioSources(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want []string
	}{
		{name: "long flag", args: []string{"-scenario", "a.hcl"}, want: []string{"a.hcl"}},
		{name: "shorthand", args: []string{"-s", "a.hcl"}, want: []string{"a.hcl"}},
		{name: "long flag wins over shorthand", args: []string{"-scenario", "a.hcl", "-s", "b.hcl"}, want: []string{"a.hcl"}},
		{name: "flag and positional", args: []string{"-s", "a.hcl", "dir", "c/**/*.hcl"}, want: []string{"a.hcl", "dir", "c/**/*.hcl"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, _, err := Parse(tc.args, &bytes.Buffer{})

			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.Scenario)
		})
	}
}

func TestParse_Flags(t *testing.T) {
	t.Parallel()

	// Arrange
	args := []string{
		"-log-level", "DEBUG",
		"-log-format", "json",
		"-admission", "strict",
		"-strict-names",
		"-builtins",
		"-inspect-port", "8080",
		"-workers", "8",
		"-summary-format", "yaml",
		"-redis-addr", "localhost:6379",
		"-redis-stream", "ledger",
		"-feed-url", "http://localhost:3000",
		"-feed-event", "entries",
		"scenario.hcl",
	}

	// Act
	cfg, exit, err := Parse(args, &bytes.Buffer{})

	// Assert
	require.NoError(t, err)
	assert.False(t, exit)
	want := config.DefaultSettings()
	want.LogLevel = "debug"
	want.LogFormat = "json"
	want.Admission = "strict"
	want.StrictNames = true
	want.Builtins = true
	want.InspectPort = 8080
	want.Workers = 8
	want.SummaryFormat = "yaml"
	want.RedisAddr = "localhost:6379"
	want.RedisStream = "ledger"
	want.FeedURL = "http://localhost:3000"
	want.FeedEvent = "entries"
	assert.Equal(t, want, cfg.Settings)
}

func TestParse_SettingsFileAndOverrides(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "hotswap.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "warn"
workers = 2
builtins = true
journal_path = "/var/lib/hotswap/ledger.journal"
`), 0o600))

	// Act
	cfg, _, err := Parse([]string{"-settings", path, "-workers", "6", "-builtins=false", "scenario.hcl"}, &bytes.Buffer{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 6, cfg.Workers)
	assert.False(t, cfg.Builtins)
	assert.Equal(t, "/var/lib/hotswap/ledger.journal", cfg.JournalPath)
}

func TestParse_Replay(t *testing.T) {
	t.Parallel()

	cfg, exit, err := Parse([]string{"-replay", "ledger.journal"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, "ledger.journal", cfg.Replay)
	assert.Empty(t, cfg.Scenario)
}

func TestParse_UsageAndHelp(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"-h"}} {
		out := &bytes.Buffer{}

		cfg, exit, err := Parse(args, out)

		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	missingSettings := filepath.Join(t.TempDir(), "missing.toml")
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantMsg: "flag provided but not defined: -nope"},
		{name: "bad log level", args: []string{"-log-level", "loud", "a.hcl"}, wantMsg: `invalid log level "loud"`},
		{name: "bad log format", args: []string{"-log-format", "xml", "a.hcl"}, wantMsg: `invalid log format "xml"`},
		{name: "bad admission", args: []string{"-admission", "lax", "a.hcl"}, wantMsg: `invalid admission "lax"`},
		{name: "bad summary format", args: []string{"-summary-format", "csv", "a.hcl"}, wantMsg: `invalid summary format "csv"`},
		{name: "bad workers", args: []string{"-workers", "0", "a.hcl"}, wantMsg: "invalid workers 0"},
		{name: "bad port", args: []string{"-inspect-port", "70000", "a.hcl"}, wantMsg: "invalid inspect port 70000"},
		{name: "two journals", args: []string{"-journal", "j", "-redis-addr", "r:6379", "a.hcl"}, wantMsg: "mutually exclusive"},
		{name: "missing settings", args: []string{"-settings", missingSettings, "a.hcl"}, wantMsg: "load settings"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
