package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fundval/contractdiff/internal/normalize"
)

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [name|file]",
		Short: "List the built-in normalization rules, or show one rule set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			out := command.OutOrStdout()
			if len(args) == 0 {
				for _, name := range normalize.BuiltinNames() {
					rs, _ := normalize.Builtin(name)
					fmt.Fprintf(out, "%s\t%s\n", name, rs)
				}
				return nil
			}

			rs, err := normalize.Resolve(args[0])
			if err != nil {
				return err
			}
			for _, spec := range rs.Specs() {
				fmt.Fprintln(out, spec)
			}
			return nil
		},
	}
}
