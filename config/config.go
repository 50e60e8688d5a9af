package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/stacktail/eventsource"
	"github.com/byte4ever/stacktail/render"
	"github.com/byte4ever/stacktail/tailer"
)

// Environment variables read by FromEnv.
const (
	EnvConfigFile   = "STACKTAIL_CONFIG"
	EnvFormat       = "STACKTAIL_FORMAT"
	EnvLogLevel     = "STACKTAIL_LOG_LEVEL"
	EnvPollInterval = "STACKTAIL_POLL_INTERVAL"
	EnvRetries      = "STACKTAIL_THROTTLE_RETRIES"
)

// Config holds every tunable of a stacktail run.
type Config struct {
	// PollInterval is the wait between two polls.
	PollInterval time.Duration
	// ThrottleDelay is the wait between throttled
	// attempts.
	ThrottleDelay time.Duration
	// ThrottleRetries is the number of delayed retries
	// after a throttled request.
	ThrottleRetries int
	// Format is the output format, text or json.
	Format string
	// LogLevel is the slog level of diagnostics.
	LogLevel string
	// FailureMessage is the template printed when the
	// stack ends in failure.
	FailureMessage string
	// Region overrides the AWS region.
	Region string
	// Profile selects an AWS shared config profile.
	Profile string
}

// file mirrors the YAML layout. Durations are strings
// such as "1s" or "500ms".
type file struct {
	PollInterval    string `yaml:"poll_interval"`
	ThrottleDelay   string `yaml:"throttle_delay"`
	ThrottleRetries *int   `yaml:"throttle_retries"`
	Format          string `yaml:"format"`
	LogLevel        string `yaml:"log_level"`
	FailureMessage  string `yaml:"failure_message"`
	Region          string `yaml:"region"`
	Profile         string `yaml:"profile"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PollInterval:    tailer.DefaultPollInterval,
		ThrottleDelay:   eventsource.DefaultThrottleDelay,
		ThrottleRetries: eventsource.DefaultThrottleRetries,
		Format:          render.FormatText,
		LogLevel:        "warn",
		FailureMessage:  render.DefaultFailureMessage,
	}
}

// Load returns the defaults overlaid with the YAML file
// at path. Keys absent from the file keep their default.
func Load(path string) (Config, error) {
	const errCtx = "loading config"

	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // path from env
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", errCtx, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf(
			"%s: parse %s: %w", errCtx, path, err,
		)
	}

	if err := cfg.merge(f); err != nil {
		return cfg, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return cfg, nil
}

// FromEnv loads the file named by STACKTAIL_CONFIG, if
// any, applies environment overrides and validates the
// result.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(
	lookup func(string) (string, bool),
) (Config, error) {
	const errCtx = "resolving config"

	cfg := Default()

	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", errCtx, err)
		}

		cfg = loaded
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cfg, nil
}

func (c *Config) merge(f file) error {
	var err error

	if f.PollInterval != "" {
		if c.PollInterval, err = time.ParseDuration(
			f.PollInterval,
		); err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
	}

	if f.ThrottleDelay != "" {
		if c.ThrottleDelay, err = time.ParseDuration(
			f.ThrottleDelay,
		); err != nil {
			return fmt.Errorf("throttle_delay: %w", err)
		}
	}

	if f.ThrottleRetries != nil {
		c.ThrottleRetries = *f.ThrottleRetries
	}

	setIfNotEmpty(&c.Format, f.Format)
	setIfNotEmpty(&c.LogLevel, f.LogLevel)
	setIfNotEmpty(&c.FailureMessage, f.FailureMessage)
	setIfNotEmpty(&c.Region, f.Region)
	setIfNotEmpty(&c.Profile, f.Profile)

	return nil
}

func (c *Config) applyEnv(
	lookup func(string) (string, bool),
) error {
	if v, ok := lookup(EnvFormat); ok {
		setIfNotEmpty(&c.Format, v)
	}

	if v, ok := lookup(EnvLogLevel); ok {
		setIfNotEmpty(&c.LogLevel, v)
	}

	if v, ok := lookup(EnvPollInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollInterval, err)
		}

		c.PollInterval = d
	}

	if v, ok := lookup(EnvRetries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRetries, err)
		}

		c.ThrottleRetries = n
	}

	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	const errCtx = "invalid config"

	var errs []error

	if c.PollInterval <= 0 {
		errs = append(errs, errors.New(
			"poll interval must be positive",
		))
	}

	if c.ThrottleDelay <= 0 {
		errs = append(errs, errors.New(
			"throttle delay must be positive",
		))
	}

	if c.ThrottleRetries < 0 {
		errs = append(errs, errors.New(
			"throttle retries must not be negative",
		))
	}

	switch c.Format {
	case render.FormatText, render.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf(
			"unknown format %q", c.Format,
		))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", errCtx, errors.Join(errs...))
	}

	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level

	if err := lvl.UnmarshalText(
		[]byte(strings.ToUpper(c.LogLevel)),
	); err != nil {
		return slog.LevelWarn, fmt.Errorf(
			"unknown log level %q", c.LogLevel,
		)
	}

	return lvl, nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
