package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings are the file-level defaults for a run. Command-line flags take
// precedence over every value here.
type Settings struct {
	LogLevel      string
	LogFormat     string
	Admission     string
	StrictNames   bool
	Builtins      bool
	InspectPort   int
	Workers       int
	SummaryFormat string
	JournalPath   string
	RedisAddr     string
	RedisStream   string
	FeedURL       string
	FeedNamespace string
	FeedEvent     string
}

// settingsFile is the TOML key mapping for Settings.
type settingsFile struct {
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	Admission     string `toml:"admission"`
	StrictNames   bool   `toml:"strict_names"`
	Builtins      bool   `toml:"builtins"`
	InspectPort   int    `toml:"inspect_port"`
	Workers       int    `toml:"workers"`
	SummaryFormat string `toml:"summary_format"`
	JournalPath   string `toml:"journal_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisStream   string `toml:"redis_stream"`
	FeedURL       string `toml:"feed_url"`
	FeedNamespace string `toml:"feed_namespace"`
	FeedEvent     string `toml:"feed_event"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:      "info",
		LogFormat:     "text",
		Admission:     "permissive",
		Workers:       4,
		SummaryFormat: "json",
		FeedNamespace: "/",
		FeedEvent:     "ledger",
	}
}

// LoadSettings overlays the keys defined in the TOML file at path onto the
// defaults and validates the result.
func LoadSettings(path string) (Settings, error) {
	cfg := DefaultSettings()

	var raw settingsFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Settings{}, fmt.Errorf("load settings: unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(raw.LogFormat))
	}
	if meta.IsDefined("admission") {
		cfg.Admission = strings.ToLower(strings.TrimSpace(raw.Admission))
	}
	if meta.IsDefined("strict_names") {
		cfg.StrictNames = raw.StrictNames
	}
	if meta.IsDefined("builtins") {
		cfg.Builtins = raw.Builtins
	}
	if meta.IsDefined("inspect_port") {
		cfg.InspectPort = raw.InspectPort
	}
	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}
	if meta.IsDefined("summary_format") {
		cfg.SummaryFormat = strings.ToLower(strings.TrimSpace(raw.SummaryFormat))
	}
	if meta.IsDefined("journal_path") {
		cfg.JournalPath = strings.TrimSpace(raw.JournalPath)
	}
	if meta.IsDefined("redis_addr") {
		cfg.RedisAddr = strings.TrimSpace(raw.RedisAddr)
	}
	if meta.IsDefined("redis_stream") {
		cfg.RedisStream = strings.TrimSpace(raw.RedisStream)
	}
	if meta.IsDefined("feed_url") {
		cfg.FeedURL = strings.TrimSpace(raw.FeedURL)
	}
	if meta.IsDefined("feed_namespace") {
		cfg.FeedNamespace = strings.TrimSpace(raw.FeedNamespace)
	}
	if meta.IsDefined("feed_event") {
		cfg.FeedEvent = strings.TrimSpace(raw.FeedEvent)
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return cfg, nil
}

// Validate checks every enumerated and ranged value.
func (s Settings) Validate() error {
	var errs []error
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", s.LogLevel))
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", s.LogFormat))
	}
	if s.Admission != "permissive" && s.Admission != "strict" {
		errs = append(errs, fmt.Errorf("invalid admission %q: must be 'permissive' or 'strict'", s.Admission))
	}
	if s.SummaryFormat != "json" && s.SummaryFormat != "yaml" {
		errs = append(errs, fmt.Errorf("invalid summary format %q: must be 'json' or 'yaml'", s.SummaryFormat))
	}
	if s.InspectPort < 0 || s.InspectPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid inspect port %d", s.InspectPort))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("invalid workers %d: must be at least 1", s.Workers))
	}
	if s.JournalPath != "" && s.RedisAddr != "" {
		errs = append(errs, errors.New("journal path and redis address are mutually exclusive"))
	}
	return errors.Join(errs...)
}
