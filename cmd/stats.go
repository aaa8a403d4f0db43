package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/fundval/contractdiff/internal/stats"
)

func statsCmd() *cobra.Command {
	var details bool

	command := &cobra.Command{
		Use:   "stats <file.json>",
		Short: "Summarize the structure of a saved JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			out := command.OutOrStdout()
			var docStats stats.Stats
			if details {
				docStats = stats.CountDetailed(doc)
			} else {
				docStats = stats.Count(doc)
			}

			statsBytes, err := json.MarshalIndent(docStats.Summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "File: %s\n%s\n", args[0], statsBytes)

			if details {
				fmt.Fprintf(out, "\n### All paths:\n\n")
				for _, p := range slices.Sorted(maps.Keys(docStats.Paths)) {
					fmt.Fprintf(out, "%s %v\n", p, docStats.Paths[p])
				}
			}
			return nil
		},
	}

	command.Flags().BoolVarP(&details, "details", "d", false,
		"list every path with the kinds found there")

	return command
}
