package cmd

import (
	"github.com/spf13/cobra"

	"dotup/internal/pipeline"
)

var fetchDryRun bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download configured resources",
	Long: `Downloads each configured resource unless its destination file is newer
than the staleness threshold. Downloads replace the destination atomically;
a failed download leaves any prior file untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := newPipeline(cfg, fetchDryRun)
		result := &pipeline.RunResult{}
		p.FetchStage(cmd.Context(), cfg, result)
		exitCode = result.ExitCode()
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "report stale resources without downloading")
	rootCmd.AddCommand(fetchCmd)
}
