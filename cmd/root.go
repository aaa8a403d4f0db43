package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/spf13/cobra"
)

// errDifferences makes the process exit with status 1 after the command
// already reported what differed.
var errDifferences = errors.New("differences found")

func rootCmd() *cobra.Command {
	var verbose int

	command := &cobra.Command{
		Use:           "contractdiff",
		Short:         "contractdiff checks that a candidate backend answers like the golden one",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.InitLogging(false, verbose, false)
		},
	}

	command.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0,
		"log verbosity; 9 logs every request, 11 adds headers")

	command.AddCommand(runCmd())
	command.AddCommand(compareCmd())
	command.AddCommand(statsCmd())
	command.AddCommand(rulesCmd())
	command.AddCommand(versionCmd())

	return command
}

func Execute() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errDifferences) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
