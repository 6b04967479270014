package cmd

import (
	"github.com/spf13/cobra"

	"dotup/internal/pipeline"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fast-forward the dotfiles checkout",
	Long: `Attempts a fast-forward-only update of the configured checkout. The update
is skipped when the path is not a git checkout, the working tree has
uncommitted changes, or the remote is unreachable; none of these fail the
command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := newPipeline(cfg, false)
		result := &pipeline.RunResult{}
		p.UpdateStage(cmd.Context(), cfg, result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
