// Command zest runs code coverage for Solana smart contracts.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"zest/internal/config"
	"zest/internal/logging"
	"zest/internal/tactile"
)

// newExecutor is swapped in tests.
var newExecutor = func() tactile.Executor { return tactile.NewDirectExecutor() }

// rootOptions carries the persistent flags and the state PersistentPreRunE
// resolves for subcommands.
type rootOptions struct {
	verbose    bool
	logJSON    bool
	configPath string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "zest",
		Short: "Code coverage for Solana smart contracts",
		Long: `zest builds and tests a Solana program with coverage instrumentation
and aggregates the profile data into HTML and lcov reports with grcov.

Boilerplate such as #[program], #[account], #[derive(...)] and declare_id!
is excluded from the numbers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		fmt.Sprintf("Config file (default: ./%s when present)", config.DefaultFileName))

	root.AddCommand(newCoverageCmd(opts))
	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newFunctionsCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

// setup loads the configuration and builds the logger.
func (o *rootOptions) setup() error {
	path, required := o.configPath, true
	if path == "" {
		path, required = config.DefaultFileName, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := cfg.Logging.Level
	if o.verbose {
		level = "debug"
	}
	_, err = logging.Initialize(logging.Options{
		Level: level,
		JSON:  o.logJSON || strings.EqualFold(cfg.Logging.Format, "json"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.BootDebug("config resolved from %s (required=%v)", path, required)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
