package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fundval/contractdiff/compare"
	"github.com/fundval/contractdiff/internal/normalize"
	"github.com/fundval/contractdiff/value"
)

type compareOptions struct {
	mode        string
	rules       string
	format      string
	summaryOnly bool
	patch       bool
	maxPatchOps int
}

func compareCmd() *cobra.Command {
	var opts compareOptions

	command := &cobra.Command{
		Use:   "compare <golden.json> <candidate.json>",
		Short: "Compare two saved JSON responses",
		Long: "Compare two saved JSON responses by shape (structure and values) or by schema\n" +
			"(structure and kinds). Exits with status 1 when they differ.",
		Args: cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			return compareFiles(command.OutOrStdout(), args[0], args[1], opts)
		},
	}

	command.Flags().StringVarP(&opts.mode, "mode", "m", "shape", "comparison mode: shape or schema")
	command.Flags().StringVarP(&opts.rules, "rules", "r", "",
		"normalization rules: built-in names or YAML files, comma separated (see `contractdiff rules`)")
	command.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	command.Flags().BoolVar(&opts.summaryOnly, "summary", false, "with --format json, leave out the patch")
	command.Flags().BoolVarP(&opts.patch, "patch", "p", false, "list the raw differences between the documents")
	command.Flags().IntVar(&opts.maxPatchOps, "max-patch-ops", 50, "cap on listed raw differences; -1 for no cap")

	return command
}

func compareFiles(out io.Writer, goldenPath, candidatePath string, opts compareOptions) error {
	mode, err := compare.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q, expected text or json", opts.format)
	}

	golden, err := readDocument(goldenPath)
	if err != nil {
		return fmt.Errorf("golden: %w", err)
	}
	candidate, err := readDocument(candidatePath)
	if err != nil {
		return fmt.Errorf("candidate: %w", err)
	}

	var rules normalize.RuleSet
	if opts.rules != "" {
		if rules, err = normalize.Resolve(opts.rules); err != nil {
			return err
		}
	}
	pair := normalize.Pair(golden, candidate, rules)

	result := compare.Documents(pair.Golden, pair.Candidate, mode, compare.ReportOptions{
		Rules:       rules.Options(),
		WithPatch:   opts.patch || (opts.format == "json" && !opts.summaryOnly),
		MaxPatchOps: opts.maxPatchOps,
	})

	switch opts.format {
	case "json":
		if err := compare.RenderJSON(out, result, opts.summaryOnly); err != nil {
			return err
		}
		fmt.Fprintln(out)
	default:
		compare.RenderText(out, result)
	}

	if !result.Equal {
		return errDifferences
	}
	return nil
}

func readDocument(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, err
	}
	doc, err := value.Parse(data)
	if err != nil {
		return value.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
