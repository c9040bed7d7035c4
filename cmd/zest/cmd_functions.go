package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zest/internal/world"
)

func newFunctionsCmd(_ *rootOptions) *cobra.Command {
	var programOnly bool

	cmd := &cobra.Command{
		Use:   "functions <file.rs>",
		Short: "List the functions of a Rust source file",
		Long: `Lists every function declared in a Rust source file with its line:column
extent. With --program-only, only the instruction handlers declared inside an
Anchor #[program] module are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := world.AllFunctions
			if programOnly {
				scope = world.ProgramFunctions
			}
			fns, err := world.ExtractFunctionsFile(cmd.Context(), args[0], scope)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, fn := range fns {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", fn.Name, fn.Start, fn.End)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&programOnly, "program-only", false, "Only functions inside the #[program] module")
	return cmd
}
