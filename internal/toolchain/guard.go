// Package toolchain validates and prepares the Rust toolchain a coverage run
// depends on.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"zest/internal/config"
	"zest/internal/logging"
	"zest/internal/tactile"
)

var (
	// ErrToolchainManagerRequired is returned when a compiler version is
	// pinned but rustup does not manage the installation.
	ErrToolchainManagerRequired = errors.New("specifying the compiler version requires a rustup-managed Rust installation")

	// ErrNightlyRequired is returned when a nightly-only option is requested
	// on a non-nightly channel.
	ErrNightlyRequired = errors.New("nightly compiler channel required")
)

// IsNightly reports whether version selects the nightly channel. An empty
// version means no override and is treated as nightly.
func IsNightly(version string) bool {
	if version == "" {
		return true
	}
	return strings.Contains(version, "nightly")
}

// Guard checks run preconditions before anything is built.
type Guard struct {
	exec      tactile.Executor
	lookupEnv func(string) (string, bool)
}

// NewGuard creates a Guard that probes rustup through exec.
func NewGuard(exec tactile.Executor) *Guard {
	return &Guard{exec: exec, lookupEnv: os.LookupEnv}
}

// Check validates cfg. Nightly requirements are checked first since they
// need no probing; rustup is only probed when a version is pinned.
func (g *Guard) Check(ctx context.Context, cfg config.Coverage) error {
	nightly := IsNightly(cfg.CompilerVersion)
	logging.GuardDebug("compiler version %q, nightly=%v", cfg.CompilerVersion, nightly)

	if cfg.Strategy.RequiresNightly() {
		if !nightly {
			return fmt.Errorf("%w: the %s strategy needs a nightly compiler version, got %q",
				ErrNightlyRequired, cfg.Strategy, cfg.CompilerVersion)
		}
		if !cfg.HasCompilerVersion() {
			logging.GuardWarn("%s strategy assumes the default toolchain is nightly", cfg.Strategy)
		}
	}
	if cfg.Branch {
		if !nightly {
			return fmt.Errorf("%w: branch coverage needs a nightly compiler version, got %q",
				ErrNightlyRequired, cfg.CompilerVersion)
		}
		if !cfg.HasCompilerVersion() {
			logging.GuardWarn("branch coverage assumes the default toolchain is nightly")
		}
	}

	if cfg.HasCompilerVersion() && !g.RustupManaged(ctx) {
		return ErrToolchainManagerRequired
	}

	logging.Guard("preconditions satisfied")
	return nil
}

// RustupManaged reports whether rustup manages the Rust installation:
// either RUSTUP_HOME or CARGO_HOME is set, or `rustup --version` succeeds.
func (g *Guard) RustupManaged(ctx context.Context) bool {
	for _, key := range []string{"RUSTUP_HOME", "CARGO_HOME"} {
		if _, ok := g.lookupEnv(key); ok {
			logging.GuardDebug("%s is set, assuming rustup", key)
			return true
		}
	}

	res, err := g.exec.Execute(ctx, tactile.Command{Binary: "rustup", Arguments: []string{"--version"}})
	if err != nil {
		logging.GuardDebug("rustup probe failed: %v", err)
		return false
	}
	return res.Success()
}
