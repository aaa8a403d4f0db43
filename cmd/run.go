package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fundval/contractdiff/internal/config"
	"github.com/fundval/contractdiff/internal/scenario"
	"github.com/fundval/contractdiff/internal/scenario/cases"
)

// runFlagKeys maps config keys to the run flags that set them.
var runFlagKeys = map[string]string{
	config.KeyGoldenBaseURL:       "golden",
	config.KeyCandidateBaseURL:    "candidate",
	config.KeyGoldenConfigPath:    "golden-config",
	config.KeyCandidateConfigPath: "candidate-config",
	config.KeyCases:               "case",
	config.KeyTimeout:             "timeout",
	config.KeyEnableDBCases:       "db-cases",
	config.KeyEnableDBSeed:        "db-seed",
}

func runCmd() *cobra.Command {
	var configPath string
	var noColor, patch, tree bool

	v := config.New()

	command := &cobra.Command{
		Use:   "run",
		Short: "Run the contract scenarios against the golden and candidate backends",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			if err := checkCaseNames(cfg.Cases); err != nil {
				return err
			}

			runner, err := scenario.NewRunner(cfg, command.OutOrStdout())
			if err != nil {
				return err
			}
			runner.Color = !noColor && !color.NoColor
			runner.Patch = patch

			report := runner.Run(command.Context(), cases.All())
			report.WriteFailures(command.ErrOrStderr())
			if tree {
				fmt.Fprintln(command.OutOrStdout())
				report.WriteSummary(command.OutOrStdout(), -1)
			}
			if report.Failed() {
				return errDifferences
			}
			return nil
		},
	}

	flags := command.Flags()
	flags.StringVar(&configPath, "config", "", "optional YAML file with run settings")
	flags.String("golden", "", "base URL of the golden backend (env GOLDEN_BASE_URL)")
	flags.String("candidate", "", "base URL of the candidate backend (env CANDIDATE_BASE_URL)")
	flags.String("golden-config", "", "persisted config file of the golden backend (env GOLDEN_CONFIG_PATH)")
	flags.String("candidate-config", "", "persisted config file of the candidate backend (env CANDIDATE_CONFIG_PATH)")
	flags.StringSlice("case", nil, "run only these cases (env CONTRACT_CASES): "+strings.Join(cases.Names(), ", "))
	flags.Duration("timeout", 0, "timeout of a single request (env CONTRACT_TIMEOUT)")
	flags.Bool("db-cases", false, "run the cases that need database backed backends (env ENABLE_DB_CASES)")
	flags.Bool("db-seed", false, "check values that depend on seeded databases (env ENABLE_DB_SEED)")
	flags.BoolVar(&noColor, "no-color", false, "print verdicts without color")
	flags.BoolVar(&patch, "patch", false, "print the raw differences of failed comparisons")
	flags.BoolVar(&tree, "tree", false, "print a tree of every case and checkpoint after the run")

	bindFlags(v, flags, runFlagKeys)

	return command
}

// bindFlags binds each flag to its config key. Only unchanged flags fall
// back to env, file and defaults.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		err := v.BindPFlag(key, flags.Lookup(flag))
		contract.AssertNoErrorf(err, "binding flag --%s to %s", flag, key)
	}
}

func checkCaseNames(selected []string) error {
	known := cases.Names()
	for _, name := range selected {
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown case %q; known cases: %s", name, strings.Join(known, ", "))
		}
	}
	return nil
}
