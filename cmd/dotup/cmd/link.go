package cmd

import (
	"github.com/spf13/cobra"

	"dotup/internal/pipeline"
)

var linkDryRun bool

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Ensure 'source' lines exist in the shell init file",
	Long: `Appends each configured line to the shell init file unless an identical
line is already present. Existing content is never reordered or removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := newPipeline(cfg, linkDryRun)
		result := &pipeline.RunResult{}
		p.LinkStage(cfg, result, linkDryRun)
		exitCode = result.ExitCode()
		return nil
	},
}

func init() {
	linkCmd.Flags().BoolVar(&linkDryRun, "dry-run", false, "report missing lines without writing")
	rootCmd.AddCommand(linkCmd)
}
