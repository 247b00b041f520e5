package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	reportissues "github.com/rl-gate/rl-gate/cmd/report-issues"
	"github.com/rl-gate/rl-gate/cmd/version"
	"github.com/rl-gate/rl-gate/pkg/shared/config"
	"github.com/rl-gate/rl-gate/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "rlgate [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Rlgate files issue-tracker tickets for blocking scan-policy violations.",
		Long: `Rlgate turns rl-secure scan reports into deduplicated GitHub issues,
applying the repository's policy config (overrides and suppression filters)
before anything is filed.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file (optional)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(reportissues.ReportIssuesCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		if cmdErr, ok := err.(*errors.CommandError); ok {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config file: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reportissues.Init(AppConfig)
}
