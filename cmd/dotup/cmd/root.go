package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dotup/internal/logging"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "dotup",
	Short: "Bootstrap and synchronize a local shell environment",
	Long: `dotup bootstraps a local shell environment from a dotfiles checkout.
It downloads helper files (such as git's bash completion script) with a
staleness cutoff, fast-forwards the checkout when that is safe, copies the
dotfiles into the home directory, and wires 'source' lines into the shell
init file — all idempotently.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbosity := 1
		if quiet {
			verbosity = 0
		} else if verbose {
			verbosity = 2
		}
		logging.Setup(verbosity)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dotup %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "dotup.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(os.Stderr, cmd.UsageString())
		return err
	})

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

// exitCode is set by commands whose failure semantics are expressed through
// stage outcomes rather than errors (e.g. a fetch failure inside 'up').
var exitCode int
