package config

import (
	"fmt"
	"strings"
)

// Strategy selects the compiler instrumentation flag family.
type Strategy string

const (
	// StrategyInstrumentCoverage uses `-C instrument-coverage` (LLVM source-based coverage).
	StrategyInstrumentCoverage Strategy = "instrument-coverage"

	// StrategyZProfile uses `-Z profile` (gcov-style, nightly only).
	StrategyZProfile Strategy = "z-profile"
)

// Strategies lists every valid Strategy.
var Strategies = []Strategy{StrategyInstrumentCoverage, StrategyZProfile}

// RequiresNightly reports whether the strategy only exists on the nightly channel.
func (s Strategy) RequiresNightly() bool {
	switch s {
	case StrategyZProfile:
		return true
	case StrategyInstrumentCoverage:
		return false
	}
	return false
}

func (s Strategy) String() string { return string(s) }

// Type implements pflag.Value.
func (s *Strategy) Type() string { return "strategy" }

// Set implements pflag.Value.
func (s *Strategy) Set(v string) error { return s.UnmarshalText([]byte(v)) }

// UnmarshalText accepts the kebab-case name and the legacy CamelCase spelling.
func (s *Strategy) UnmarshalText(text []byte) error {
	switch normalizeEnum(string(text)) {
	case "instrument-coverage", "instrumentcoverage":
		*s = StrategyInstrumentCoverage
	case "z-profile", "zprofile":
		*s = StrategyZProfile
	default:
		return fmt.Errorf("invalid coverage strategy %q (valid: %v)", string(text), Strategies)
	}
	return nil
}

// OutputFormat is a report format produced by the aggregator.
type OutputFormat string

const (
	// FormatHTML is a browsable report directory, opened after the run.
	FormatHTML OutputFormat = "html"

	// FormatLCOV is a flat lcov file for CI tooling.
	FormatLCOV OutputFormat = "lcov"
)

// OutputFormats lists every valid OutputFormat.
var OutputFormats = []OutputFormat{FormatHTML, FormatLCOV}

func (f OutputFormat) String() string { return string(f) }

// Type implements pflag.Value.
func (f *OutputFormat) Type() string { return "format" }

// Set implements pflag.Value.
func (f *OutputFormat) Set(v string) error { return f.UnmarshalText([]byte(v)) }

func (f *OutputFormat) UnmarshalText(text []byte) error {
	switch normalizeEnum(string(text)) {
	case "html":
		*f = FormatHTML
	case "lcov":
		*f = FormatLCOV
	default:
		return fmt.Errorf("invalid output type %q (valid: %v)", string(text), OutputFormats)
	}
	return nil
}

// DedupeFormats drops repeated formats, keeping first-seen order.
func DedupeFormats(formats []OutputFormat) []OutputFormat {
	seen := make(map[OutputFormat]struct{}, len(formats))
	out := make([]OutputFormat, 0, len(formats))
	for _, f := range formats {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ContractStyle is the smart-contract authoring convention of the project.
type ContractStyle string

const (
	// StyleAnchor is the Anchor framework (#[program], #[account], declare_program!).
	StyleAnchor ContractStyle = "anchor"

	// StyleNative is a plain solana_program entrypoint crate.
	StyleNative ContractStyle = "native"
)

// ContractStyles lists every valid ContractStyle.
var ContractStyles = []ContractStyle{StyleAnchor, StyleNative}

func (c ContractStyle) String() string { return string(c) }

// Type implements pflag.Value.
func (c *ContractStyle) Type() string { return "style" }

// Set implements pflag.Value.
func (c *ContractStyle) Set(v string) error { return c.UnmarshalText([]byte(v)) }

func (c *ContractStyle) UnmarshalText(text []byte) error {
	switch normalizeEnum(string(text)) {
	case "anchor":
		*c = StyleAnchor
	case "native":
		*c = StyleNative
	default:
		return fmt.Errorf("invalid contract style %q (valid: %v)", string(text), ContractStyles)
	}
	return nil
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", "-")
}
