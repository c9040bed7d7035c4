package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zest/internal/generate"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var path, program string

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Generate a Solana program test from a template",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := root.cfg.Generate
			if cmd.Flags().Changed("path") {
				gen.Path = path
			}
			if cmd.Flags().Changed("program") {
				gen.Program = program
			}
			if gen.Path == "" {
				return fmt.Errorf("generate path must not be empty")
			}

			if err := (generate.TestTemplate{Program: gen.Program}).Realise(gen.Path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated test template at %s\n", gen.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "./test.rs", "Where the generated file should be written")
	cmd.Flags().StringVar(&program, "program", generate.DefaultProgram, "Program crate the test refers to")
	return cmd
}
