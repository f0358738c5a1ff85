package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/hotswap/internal/app"
	"github.com/vk/hotswap/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) *ExitError {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Values come from the defaults, then the -settings file, then flags that
// were set explicitly.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	defaults := config.DefaultSettings()

	flagSet := flag.NewFlagSet("hotswap", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
hotswap - a runtime for capabilities that are registered, modified and rolled
back while it runs, with a learning ledger and performance summary.

Usage:
  hotswap [options] [SCENARIO_PATH...]
  hotswap -replay JOURNAL

Arguments:
  SCENARIO_PATH
    A .hcl file, a directory containing .hcl files, or a glob pattern.

Options:
`)
		flagSet.PrintDefaults()
	}

	scenarioFlag := flagSet.String("scenario", "", "Path to the scenario file or directory.")
	sFlag := flagSet.String("s", "", "Path to the scenario file or directory (shorthand).")
	settingsFlag := flagSet.String("settings", "", "Path to a TOML settings file. Flags override its values.")
	replayFlag := flagSet.String("replay", "", "Print the entries of a journal file or redis:// stream and exit.")

	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	admissionFlag := flagSet.String("admission", defaults.Admission, "Admission policy for analyzer findings. Options: 'permissive' or 'strict'.")
	strictNamesFlag := flagSet.Bool("strict-names", defaults.StrictNames, "Fail to register an existing name instead of modifying it.")
	builtinsFlag := flagSet.Bool("builtins", defaults.Builtins, "Preload the built-in capabilities.")
	inspectPortFlag := flagSet.Int("inspect-port", defaults.InspectPort, "Port for the HTTP inspection server. 0 is disabled.")
	workersFlag := flagSet.Int("workers", defaults.Workers, "Number of concurrent workers for repeated invocations.")
	summaryFormatFlag := flagSet.String("summary-format", defaults.SummaryFormat, "Summary output format. Options: 'json' or 'yaml'.")
	journalFlag := flagSet.String("journal", defaults.JournalPath, "Append ledger entries to this file.")
	redisAddrFlag := flagSet.String("redis-addr", defaults.RedisAddr, "Append ledger entries to a Redis stream at this address.")
	redisStreamFlag := flagSet.String("redis-stream", defaults.RedisStream, "Redis stream name for the journal.")
	feedURLFlag := flagSet.String("feed-url", defaults.FeedURL, "Publish ledger entries to this socket.io server.")
	feedNamespaceFlag := flagSet.String("feed-namespace", defaults.FeedNamespace, "socket.io namespace for the ledger feed.")
	feedEventFlag := flagSet.String("feed-event", defaults.FeedEvent, "socket.io event name for the ledger feed.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError(err)
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	switch {
	case *scenarioFlag != "":
		paths = append(paths, *scenarioFlag)
	case *sFlag != "":
		paths = append(paths, *sFlag)
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Scenario paths determined.", "paths", paths)

	if len(paths) == 0 && *replayFlag == "" {
		slog.Debug("No scenario path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	settings := defaults
	if *settingsFlag != "" {
		loaded, err := config.LoadSettings(*settingsFlag)
		if err != nil {
			return nil, false, usageError(err)
		}
		settings = loaded
		slog.Debug("Settings file loaded.", "path", *settingsFlag)
	}

	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			settings.LogLevel = strings.ToLower(*logLevelFlag)
		case "log-format":
			settings.LogFormat = strings.ToLower(*logFormatFlag)
		case "admission":
			settings.Admission = strings.ToLower(*admissionFlag)
		case "strict-names":
			settings.StrictNames = *strictNamesFlag
		case "builtins":
			settings.Builtins = *builtinsFlag
		case "inspect-port":
			settings.InspectPort = *inspectPortFlag
		case "workers":
			settings.Workers = *workersFlag
		case "summary-format":
			settings.SummaryFormat = strings.ToLower(*summaryFormatFlag)
		case "journal":
			settings.JournalPath = *journalFlag
		case "redis-addr":
			settings.RedisAddr = *redisAddrFlag
		case "redis-stream":
			settings.RedisStream = *redisStreamFlag
		case "feed-url":
			settings.FeedURL = *feedURLFlag
		case "feed-namespace":
			settings.FeedNamespace = *feedNamespaceFlag
		case "feed-event":
			settings.FeedEvent = *feedEventFlag
		}
	})

	cfg, err := app.NewConfig(app.Config{
		Scenario: paths,
		Replay:   *replayFlag,
		Settings: settings,
	})
	if err != nil {
		return nil, false, usageError(err)
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
