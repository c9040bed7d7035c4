package pipeline

import (
	"zest/internal/artifacts"
	"zest/internal/config"
)

// CargoBuildArgs returns the cargo arguments of the build stage. Tests are
// compiled too so the test stage only runs them.
func CargoBuildArgs(cfg config.Coverage) []string {
	args := toolchainArg(cfg)
	if cfg.WithSBF {
		args = append(args, "build-sbf", "--")
	} else {
		args = append(args, "build")
	}
	return append(args,
		"--color", "always",
		"--tests",
		"--target-dir", artifacts.TargetDir,
	)
}

// CargoTestArgs returns the cargo arguments of one test invocation. cargo takes
// a single positional filter, so an empty filter runs every test. The skip
// list is always forwarded to the test harness.
func CargoTestArgs(cfg config.Coverage, filter string) []string {
	args := toolchainArg(cfg)
	if cfg.WithSBF {
		args = append(args, "test-sbf", "--")
	} else {
		args = append(args, "test")
	}
	args = append(args, "--color", "always")
	if filter != "" {
		args = append(args, filter)
	}
	args = append(args, "--target-dir", artifacts.TargetDir, "--")
	for _, skip := range cfg.Skips {
		args = append(args, "--skip", skip)
	}
	return args
}

func toolchainArg(cfg config.Coverage) []string {
	if !cfg.HasCompilerVersion() {
		return nil
	}
	return []string{"+" + cfg.CompilerVersion}
}
