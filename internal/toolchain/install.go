package toolchain

import (
	"context"
	"fmt"

	"zest/internal/logging"
	"zest/internal/tactile"
)

// CoverageComponent is the rustup component that ships llvm-profdata and
// llvm-cov for the pinned toolchain.
const CoverageComponent = "llvm-tools-preview"

// Installer ensures a pinned toolchain is present.
type Installer struct {
	exec tactile.Executor
}

// NewInstaller creates an Installer.
func NewInstaller(exec tactile.Executor) *Installer {
	return &Installer{exec: exec}
}

// InstallArgs returns the rustup arguments for version.
func InstallArgs(version string) []string {
	return []string{
		"toolchain", "install",
		"--no-self-update",
		"--profile", "minimal",
		version,
		"--component", CoverageComponent,
	}
}

// Install runs rustup for version. A non-zero exit is returned as a
// *tactile.ExitError carrying both streams.
func (i *Installer) Install(ctx context.Context, version, requestID string) error {
	timer := logging.StartTimer(logging.CategoryToolchain, "toolchain install")
	defer timer.Stop()

	cmd := tactile.Command{
		Binary:    "rustup",
		Arguments: InstallArgs(version),
		RequestID: requestID,
	}
	logging.Toolchain("installing %s with %s", version, CoverageComponent)
	res, err := i.exec.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("rustup: %w", err)
	}
	if err := tactile.CheckExit(res); err != nil {
		return fmt.Errorf("rustup toolchain install: %w", err)
	}
	logging.ToolchainDebug("toolchain %s ready", version)
	return nil
}
