// Package build derives the environment overlay applied to every process a
// coverage run spawns. The overlay is computed once per run and handed to
// the executor as KEY=VALUE pairs; it is never written into the zest process
// environment, so consecutive runs (watch mode) cannot leak into each other.
package build

import (
	"fmt"
	"path/filepath"
	"sort"

	"zest/internal/config"
	"zest/internal/logging"
)

// ProfileFilePattern names the profile files written by instrumented binaries.
// %p expands to the process ID and %m to the binary signature.
const ProfileFilePattern = "zest-%p-%m.profraw"

const (
	// RustMinStack gives instrumented test threads room for the deeper frames.
	RustMinStack = "8388608"

	instrumentCoverageFlag = "-C instrument-coverage"
	branchCoverageFlag     = "-Z coverage-options=mcdc"
	zProfileFlag           = "-Z profile"
)

// Overlay maps variable names to values.
type Overlay map[string]string

// NewOverlay builds the overlay for cfg. coverageDir is made absolute so the
// profile pattern does not depend on the child's working directory.
func NewOverlay(cfg config.Coverage, coverageDir string) (Overlay, error) {
	absDir, err := filepath.Abs(coverageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve coverage directory %s: %w", coverageDir, err)
	}

	o := Overlay{
		"LLVM_PROFILE_FILE": filepath.Join(absDir, ProfileFilePattern),
		"RUST_BACKTRACE":    "1",
		"RUST_MIN_STACK":    RustMinStack,
	}

	switch cfg.Strategy {
	case config.StrategyInstrumentCoverage:
		rustflags := instrumentCoverageFlag
		if cfg.Branch {
			rustflags += " " + branchCoverageFlag
		}
		o["RUSTFLAGS"] = rustflags
	case config.StrategyZProfile:
		// gcov profiling cannot be combined with incremental compilation.
		o["CARGO_INCREMENTAL"] = "0"
		o["RUSTFLAGS"] = zProfileFlag
	default:
		return nil, fmt.Errorf("unknown coverage strategy %q", cfg.Strategy)
	}

	for _, key := range o.Keys() {
		logging.BuildDebug("overlay %s=%s", key, o[key])
	}
	return o, nil
}

// Keys returns the overlay's variable names in sorted order.
func (o Overlay) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pairs renders the overlay as sorted KEY=VALUE entries.
func (o Overlay) Pairs() []string {
	pairs := make([]string, 0, len(o))
	for _, k := range o.Keys() {
		pairs = append(pairs, k+"="+o[k])
	}
	return pairs
}
