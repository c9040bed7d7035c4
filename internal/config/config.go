package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when --config is not given.
const DefaultFileName = "zest.yaml"

// DefaultWatchDebounce is the settle time before watch mode re-runs.
const DefaultWatchDebounce = 500 * time.Millisecond

// EnvPrefix prefixes every environment override (ZEST_BRANCH, ZEST_GENERATE_PATH, ...).
const EnvPrefix = "ZEST"

// Config holds all zest configuration.
type Config struct {
	// Coverage configures `zest coverage`.
	Coverage Coverage `yaml:"coverage"`

	// Generate configures `zest generate`.
	Generate Generate `yaml:"generate"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// Coverage is the resolved configuration for one pipeline run.
type Coverage struct {
	// Path to the Solana project. Relative paths resolve against the working directory.
	Path string `yaml:"path"`

	// CompilerVersion pins the rustup toolchain (e.g. "nightly-2024-11-19").
	// Empty means the project's default toolchain.
	CompilerVersion string `yaml:"compiler_version" split_words:"true"`

	// Branch enables branch coverage (nightly only).
	Branch bool `yaml:"branch"`

	// WithSBF builds and tests with cargo-build-sbf / cargo-test-sbf.
	WithSBF bool `yaml:"with_sbf" split_words:"true"`

	// Strategy is the instrumentation flag family.
	Strategy Strategy `yaml:"coverage_strategy"`

	// Tests are test-name filters; each one gets its own test invocation.
	Tests []string `yaml:"tests"`

	// Skips are forwarded to every test invocation as --skip.
	Skips []string `yaml:"skips"`

	// OutputFormats are the report formats to produce, in dispatch order.
	OutputFormats []OutputFormat `yaml:"output_types" split_words:"true"`

	// ContractStyle selects the boilerplate exclusion rules.
	ContractStyle ContractStyle `yaml:"contract_style" split_words:"true"`

	// Watch re-runs the pipeline when sources change.
	Watch bool `yaml:"watch"`

	// WatchDebounce is how long sources must stay quiet before a re-run.
	WatchDebounce time.Duration `yaml:"watch_debounce" split_words:"true"`

	// NoOpen prints the HTML report location without opening a viewer.
	NoOpen bool `yaml:"no_open" split_words:"true"`
}

// Generate configures the test template generator.
type Generate struct {
	// Path is where the template is written.
	Path string `yaml:"path"`

	// Program is the crate name the template refers to.
	Program string `yaml:"program"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Coverage: DefaultCoverage(),
		Generate: Generate{
			Path:    "./test.rs",
			Program: "program",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// DefaultCoverage returns the coverage defaults.
func DefaultCoverage() Coverage {
	return Coverage{
		Path:          ".",
		Strategy:      StrategyInstrumentCoverage,
		Tests:         []string{},
		Skips:         []string{},
		OutputFormats: []OutputFormat{FormatHTML},
		ContractStyle: StyleAnchor,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// Load resolves defaults, the YAML file at path and ZEST_* environment
// variables, in that order. A missing file is only an error when required
// is set (the user named it explicitly).
func Load(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
			// Defaults only.
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies ZEST_* environment variables. Unset variables
// leave the current value alone.
func (c *Config) applyEnvOverrides() error {
	if err := envconfig.Process(EnvPrefix, &c.Coverage); err != nil {
		return fmt.Errorf("invalid coverage environment: %w", err)
	}
	if err := envconfig.Process(EnvPrefix+"_GENERATE", &c.Generate); err != nil {
		return fmt.Errorf("invalid generate environment: %w", err)
	}
	if err := envconfig.Process(EnvPrefix+"_LOG", &c.Logging); err != nil {
		return fmt.Errorf("invalid logging environment: %w", err)
	}
	return nil
}

// Validate checks the coverage configuration and normalizes it in place:
// output formats are deduplicated keeping first-seen order.
func (c *Coverage) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("project path must not be empty")
	}

	switch c.Strategy {
	case StrategyInstrumentCoverage, StrategyZProfile:
	default:
		return fmt.Errorf("invalid coverage strategy %q (valid: %v)", c.Strategy, Strategies)
	}

	switch c.ContractStyle {
	case StyleAnchor, StyleNative:
	default:
		return fmt.Errorf("invalid contract style %q (valid: %v)", c.ContractStyle, ContractStyles)
	}

	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %s", c.WatchDebounce)
	}

	c.OutputFormats = DedupeFormats(c.OutputFormats)
	if len(c.OutputFormats) == 0 {
		return fmt.Errorf("at least one output type is required (valid: %v)", OutputFormats)
	}
	for _, f := range c.OutputFormats {
		switch f {
		case FormatHTML, FormatLCOV:
		default:
			return fmt.Errorf("invalid output type %q (valid: %v)", f, OutputFormats)
		}
	}

	return nil
}

// HasCompilerVersion reports whether a toolchain override was requested.
func (c *Coverage) HasCompilerVersion() bool {
	return c.CompilerVersion != ""
}

// Clone returns a deep copy, so a validated run config cannot be mutated
// through shared slices.
func (c Coverage) Clone() Coverage {
	c.Tests = append([]string(nil), c.Tests...)
	c.Skips = append([]string(nil), c.Skips...)
	c.OutputFormats = append([]OutputFormat(nil), c.OutputFormats...)
	return c
}
