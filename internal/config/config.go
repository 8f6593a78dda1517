// Package config loads runtime and compiler configuration from YAML,
// grounded on the teacher's devtools/formats.go use of
// github.com/goccy/go-yaml for its export formats (chosen there "for
// better performance and features than gopkg.in/yaml.v3" — the same
// reasoning applies here).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the top-level document a host binary loads from disk
// (bloom.yaml) before wiring up a runtime.
type Config struct {
	// Dev records whether development-mode warnings are wanted. It is
	// loaded and overridable (WithDev) but nothing in this module reads
	// it: pkg/bloom's devWarn logs regardless, limited only by each
	// instance's rate limiter.
	Dev bool `yaml:"dev"`

	// WarnRateLimit and WarnRateBurst describe a per-instance warning
	// rate (one warning per WarnRateLimit, bursts of WarnRateBurst).
	// Nothing in this module reads them; pkg/bloom's NewInstance builds
	// its limiter with the same values as Default() hard-coded.
	WarnRateLimit time.Duration `yaml:"warn_rate_limit"`
	WarnRateBurst int           `yaml:"warn_rate_burst"`

	Compiler CompilerConfig `yaml:"compiler"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Observ   ObservConfig   `yaml:"observability"`
}

// CompilerConfig governs template compilation (pkg/bloom/compiler).
type CompilerConfig struct {
	// Delimiters overrides the default "{{" / "}}" interpolation
	// delimiters (spec §4.10).
	Delimiters [2]string `yaml:"delimiters"`

	// WhitespaceMode names a whitespace handling mode ("preserve",
	// "condense", or "trim"). It is loaded but not read: the compiler
	// has no whitespace option and emits text runs as scanned.
	WhitespaceMode string `yaml:"whitespace_mode"`

	// CacheEnabled turns on the msgpack-backed compiled-template cache.
	CacheEnabled bool   `yaml:"cache_enabled"`
	CacheDir     string `yaml:"cache_dir"`
}

// MetricsConfig selects and configures the Metrics sink.
type MetricsConfig struct {
	Backend string `yaml:"backend"` // "noop" | "prometheus"
}

// ObservConfig names an error Reporter backend. It is loaded but not
// read: cmd/bloomdemo always installs the console reporter.
type ObservConfig struct {
	Backend string `yaml:"backend"` // "console" | "sentry"
	SentryDSN string `yaml:"sentry_dsn"`
}

// Default returns a Config with the same defaults the runtime falls
// back to when no file is loaded.
func Default() Config {
	return Config{
		Dev:           true,
		WarnRateLimit: time.Second,
		WarnRateBurst: 5,
		Compiler: CompilerConfig{
			Delimiters:     [2]string{"{{", "}}"},
			WhitespaceMode: "condense",
			CacheEnabled:   true,
			CacheDir:       ".bloom-cache",
		},
		Metrics: MetricsConfig{Backend: "noop"},
		Observ:  ObservConfig{Backend: "console"},
	}
}

// Load reads and parses a YAML config file at path, starting from
// Default() so a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Option is a functional override applied after Load/Default, for
// callers that want to tweak a field or two without writing a file
// (tests, the bloomdemo CLI's flags).
type Option func(*Config)

// WithDev overrides the Dev flag.
func WithDev(dev bool) Option { return func(c *Config) { c.Dev = dev } }

// WithMetricsBackend overrides the metrics backend selector.
func WithMetricsBackend(backend string) Option {
	return func(c *Config) { c.Metrics.Backend = backend }
}

// Apply runs every opt against cfg in order and returns it.
func Apply(cfg Config, opts ...Option) Config {
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
