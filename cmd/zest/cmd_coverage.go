package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"zest/internal/config"
	"zest/internal/logging"
	"zest/internal/pipeline"
	"zest/internal/report"
	"zest/internal/ux"
	"zest/internal/watch"
)

// coverageFlags mirrors config.Coverage. Only flags the user set override
// the file and environment.
type coverageFlags struct {
	path            string
	compilerVersion string
	branch          bool
	withSBF         bool
	strategy        config.Strategy
	tests           []string
	skips           []string
	outputTypes     []string
	contractStyle   config.ContractStyle
	watch           bool
	watchDebounce   time.Duration
	noOpen          bool
}

func newCoverageFlags() *coverageFlags {
	return &coverageFlags{
		strategy:      config.StrategyInstrumentCoverage,
		contractStyle: config.StyleAnchor,
	}
}

func newCoverageCmd(root *rootOptions) *cobra.Command {
	f := newCoverageFlags()

	cmd := &cobra.Command{
		Use:     "coverage",
		Aliases: []string{"c"},
		Short:   "Run coverage on a Solana project",
		Example: `  zest coverage --path ./programs/counter
  zest c --branch --compiler-version nightly --output-type html --output-type lcov
  zest c --test initialize --test increment --skip slow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg.Coverage.Clone()
			if err := f.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCoverage(cmd, cfg)
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func (f *coverageFlags) register(fl *pflag.FlagSet) {
	fl.StringVar(&f.path, "path", ".", "Path to the Solana project")
	fl.StringVar(&f.compilerVersion, "compiler-version", "",
		"Toolchain to use (overrides rust-toolchain.toml); nightly required for branch coverage")
	fl.BoolVar(&f.branch, "branch", false, "Enable branch coverage (nightly compiler required)")
	fl.BoolVar(&f.withSBF, "with-sbf", false, "Build and test with cargo-build-sbf and cargo-test-sbf")
	fl.Var(&f.strategy, "coverage-strategy", fmt.Sprintf("Coverage strategy %v", config.Strategies))
	fl.StringArrayVar(&f.tests, "test", nil, "Test name filter, one cargo test run per filter (repeatable)")
	fl.StringArrayVar(&f.skips, "skip", nil, "Test name to skip (repeatable)")
	fl.StringArrayVar(&f.outputTypes, "output-type", nil, fmt.Sprintf("Report format %v (repeatable)", config.OutputFormats))
	fl.Var(&f.contractStyle, "contract-style", fmt.Sprintf("Contract style %v", config.ContractStyles))
	fl.BoolVar(&f.watch, "watch", false, "Re-run when sources change")
	fl.DurationVar(&f.watchDebounce, "watch-debounce", config.DefaultWatchDebounce, "How long sources must stay quiet before a re-run")
	fl.BoolVar(&f.noOpen, "no-open", false, "Print the HTML report location without opening it")
}

// apply overlays the flags the user set onto cfg.
func (f *coverageFlags) apply(fl *pflag.FlagSet, cfg *config.Coverage) error {
	changed := fl.Changed
	if changed("path") {
		cfg.Path = f.path
	}
	if changed("compiler-version") {
		cfg.CompilerVersion = f.compilerVersion
	}
	if changed("branch") {
		cfg.Branch = f.branch
	}
	if changed("with-sbf") {
		cfg.WithSBF = f.withSBF
	}
	if changed("coverage-strategy") {
		cfg.Strategy = f.strategy
	}
	if changed("test") {
		cfg.Tests = append([]string(nil), f.tests...)
	}
	if changed("skip") {
		cfg.Skips = append([]string(nil), f.skips...)
	}
	if changed("output-type") {
		formats := make([]config.OutputFormat, 0, len(f.outputTypes))
		for _, raw := range f.outputTypes {
			var of config.OutputFormat
			if err := of.UnmarshalText([]byte(raw)); err != nil {
				return err
			}
			formats = append(formats, of)
		}
		cfg.OutputFormats = formats
	}
	if changed("contract-style") {
		cfg.ContractStyle = f.contractStyle
	}
	if changed("watch") {
		cfg.Watch = f.watch
	}
	if changed("watch-debounce") {
		cfg.WatchDebounce = f.watchDebounce
	}
	if changed("no-open") {
		cfg.NoOpen = f.noOpen
	}
	return nil
}

func runCoverage(cmd *cobra.Command, cfg config.Coverage) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := newExecutor()
	dispatcher := report.NewDispatcher(cmd.OutOrStdout(), report.NewSystemOpener(exec))
	dispatcher.OpenHTML = !cfg.NoOpen

	p, err := pipeline.New(cfg, pipeline.Options{
		Executor:   exec,
		Dispatcher: dispatcher,
		Status:     ux.NewStatus(cmd.ErrOrStderr()),
		Stderr:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	err = p.Run(ctx)
	if !cfg.Watch {
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	} else {
		dispatcher.OpenHTML = false
	}
	return watchAndRerun(ctx, cmd, p, dispatcher, cfg.WatchDebounce)
}

// watchAndRerun blocks until ctx ends, re-running p after source changes.
// Failed runs are reported and watching continues.
func watchAndRerun(ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline, d *report.Dispatcher, debounce time.Duration) error {
	w, err := watch.NewWatcher(p.Layout().Root, func(ctx context.Context, changed []string) {
		logging.WatchDebug("changed: %v", changed)
		if err := p.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			return
		}
		d.OpenHTML = false
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	if debounce > 0 {
		w.SetDebounce(debounce)
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return fmt.Errorf("start watcher: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl-C to stop)...\n", p.Layout().Root)

	<-ctx.Done()
	w.Stop()
	stats := w.Stats()
	logging.WatchDebug("watch ended: %d events, %d re-runs, %d errors", stats.Events, stats.Batches, stats.Errors)
	return nil
}
