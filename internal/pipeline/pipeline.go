// Package pipeline drives one coverage run: guard, artifact preparation,
// build, tests, aggregation and report dispatch, strictly in that order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"zest/internal/aggregate"
	"zest/internal/artifacts"
	"zest/internal/build"
	"zest/internal/config"
	"zest/internal/logging"
	"zest/internal/report"
	"zest/internal/tactile"
	"zest/internal/toolchain"
	"zest/internal/ux"
)

// Checker validates run preconditions.
type Checker interface {
	Check(ctx context.Context, cfg config.Coverage) error
}

// Installer makes a pinned toolchain available.
type Installer interface {
	Install(ctx context.Context, version, requestID string) error
}

// Dispatcher presents the generated reports.
type Dispatcher interface {
	Dispatch(ctx context.Context, formats []config.OutputFormat, layout artifacts.Layout) error
}

// Options wires the collaborators of a Pipeline. Nil fields get the
// production implementation backed by Executor.
type Options struct {
	Executor   tactile.Executor
	Guard      Checker
	Installer  Installer
	Engine     aggregate.Engine
	Dispatcher Dispatcher
	Status     ux.Status

	// Stderr receives the captured output of a failed stage.
	Stderr io.Writer
}

func (o Options) withDefaults() Options {
	if o.Executor == nil {
		o.Executor = tactile.NewDirectExecutor()
	}
	if o.Guard == nil {
		o.Guard = toolchain.NewGuard(o.Executor)
	}
	if o.Installer == nil {
		o.Installer = toolchain.NewInstaller(o.Executor)
	}
	if o.Engine == nil {
		o.Engine = aggregate.NewGrcov(o.Executor)
	}
	if o.Dispatcher == nil {
		o.Dispatcher = report.NewDispatcher(os.Stdout, report.NewSystemOpener(o.Executor))
	}
	if o.Status == nil {
		o.Status = ux.Nop{}
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// Pipeline runs coverage for one validated configuration.
type Pipeline struct {
	cfg    config.Coverage
	opts   Options
	layout artifacts.Layout
}

// New validates cfg and resolves the project root. The configuration is
// copied; later changes to the caller's value do not affect the pipeline.
func New(cfg config.Coverage, opts Options) (*Pipeline, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	root, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve project path %s: %w", cfg.Path, err)
	}
	return &Pipeline{
		cfg:    cfg,
		opts:   opts.withDefaults(),
		layout: artifacts.NewLayout(root),
	}, nil
}

// Layout returns the resolved project layout.
func (p *Pipeline) Layout() artifacts.Layout { return p.layout }

// Run executes every stage once. The first failure ends the run.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	timer := logging.StartTimer(logging.CategoryBoot, "coverage run")
	defer timer.StopWithInfo()

	if err := p.opts.Guard.Check(ctx, p.cfg); err != nil {
		return err
	}

	info, err := os.Stat(p.layout.Root)
	if err != nil {
		return fmt.Errorf("%w: project path: %v", ErrIO, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: project path %s is not a directory", ErrIO, p.layout.Root)
	}
	logging.Boot("coverage run %s in %s", runID, p.layout.Root)

	if p.cfg.HasCompilerVersion() {
		if err := p.install(ctx, runID); err != nil {
			return err
		}
	}

	if err := artifacts.Prepare(p.layout.Coverage(), p.profileExts()...); err != nil {
		return err
	}

	overlay, err := build.NewOverlay(p.cfg, p.layout.Coverage())
	if err != nil {
		return err
	}
	env := overlay.Pairs()

	if err := p.build(ctx, runID, env); err != nil {
		return err
	}
	if err := p.test(ctx, runID, env); err != nil {
		return err
	}
	if err := p.aggregate(ctx, runID); err != nil {
		return err
	}
	return p.opts.Dispatcher.Dispatch(ctx, p.cfg.OutputFormats, p.layout)
}

func (p *Pipeline) profileExts() []string {
	if p.cfg.Strategy == config.StrategyZProfile {
		return []string{artifacts.ProfrawExt, artifacts.GcdaExt}
	}
	return []string{artifacts.ProfrawExt}
}

func (p *Pipeline) install(ctx context.Context, runID string) error {
	p.opts.Status.Start("Installing toolchain (with `" + toolchain.CoverageComponent + "` component)...")
	if err := p.opts.Installer.Install(ctx, p.cfg.CompilerVersion, runID); err != nil {
		p.opts.Status.Fail("Rustup toolchain install failed!")
		var exitErr *tactile.ExitError
		if errors.As(err, &exitErr) {
			p.echo("rustup", exitErr.Result)
			return &StageError{Stage: "rustup", Err: ErrInstallFailed, Result: exitErr.Result}
		}
		return &StageError{Stage: "rustup", Err: ErrInstallFailed, Cause: err}
	}
	p.opts.Status.Succeed("Toolchain installed!")
	return nil
}

func (p *Pipeline) build(ctx context.Context, runID string, env []string) error {
	timer := logging.StartTimer(logging.CategoryBuild, "cargo build")
	defer timer.Stop()

	p.opts.Status.Start("Building the project...")
	res, err := p.cargo(ctx, runID, env, CargoBuildArgs(p.cfg))
	if err != nil {
		p.opts.Status.Fail("Build failed!")
		return &StageError{Stage: "cargo build", Err: ErrBuildFailed, Cause: err}
	}
	if !res.Success() {
		p.opts.Status.Fail("Build failed!")
		logging.BuildError("cargo build exited %d", res.ExitCode)
		p.echo("cargo build", res)
		return &StageError{Stage: "cargo build", Err: ErrBuildFailed, Result: res}
	}
	logging.Build("cargo build succeeded")
	p.opts.Status.Succeed("Project built!")
	return nil
}

// test runs cargo once per filter, or once unfiltered, stopping at the
// first failure.
func (p *Pipeline) test(ctx context.Context, runID string, env []string) error {
	filters := p.cfg.Tests
	if len(filters) == 0 {
		filters = []string{""}
	}

	for _, filter := range filters {
		signifier := ""
		if filter != "" {
			signifier = " (" + filter + ")"
		}
		logging.TestsDebug("running tests%s", signifier)

		p.opts.Status.Start("Running the tests" + signifier + "...")
		res, err := p.cargo(ctx, runID, env, CargoTestArgs(p.cfg, filter))
		if err != nil {
			p.opts.Status.Fail("Tests" + signifier + " failed!")
			return &StageError{Stage: "cargo test", Err: ErrTestFailed, Cause: err}
		}
		if !res.Success() {
			p.opts.Status.Fail("Tests" + signifier + " failed!")
			logging.TestsError("cargo test%s exited %d", signifier, res.ExitCode)
			p.echo("cargo test", res)
			return &StageError{Stage: "cargo test", Err: ErrTestFailed, Result: res}
		}
		logging.Tests("cargo test%s succeeded", signifier)
		p.opts.Status.Succeed("Tests" + signifier + " finished!")
	}
	return nil
}

func (p *Pipeline) aggregate(ctx context.Context, runID string) error {
	req, err := aggregate.NewRequest(p.cfg, p.layout)
	if err != nil {
		return err
	}
	req.RequestID = runID

	p.opts.Status.Start("Aggregating coverage info...")
	if err := p.opts.Engine.Aggregate(ctx, req); err != nil {
		p.opts.Status.Fail("Coverage aggregation failed!")
		var exitErr *tactile.ExitError
		if errors.As(err, &exitErr) {
			p.echo("grcov", exitErr.Result)
		}
		return err
	}
	p.opts.Status.Succeed("Coverage aggregated!")
	return nil
}

func (p *Pipeline) cargo(ctx context.Context, runID string, env, args []string) (*tactile.ExecutionResult, error) {
	return p.opts.Executor.Execute(ctx, tactile.Command{
		Binary:           "cargo",
		Arguments:        args,
		WorkingDirectory: p.layout.Root,
		Environment:      env,
		RequestID:        runID,
	})
}

// echo prints both captured streams of a failed process.
func (p *Pipeline) echo(name string, res *tactile.ExecutionResult) {
	fmt.Fprintf(p.opts.Stderr, "%s stdout:\n%s\n", name, res.Stdout)
	fmt.Fprintf(p.opts.Stderr, "%s stderr:\n%s\n", name, res.Stderr)
}
