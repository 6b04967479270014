package cmd

import (
	"github.com/spf13/cobra"

	"dotup/internal/pipeline"
)

var (
	upForce  bool
	upDryRun bool
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run the full bootstrap pipeline",
	Long: `Fetches configured resources, fast-forwards the dotfiles checkout when it
is clean and its remote is reachable, syncs the dotfile tree into the
destination directory (after confirmation, unless --force), and ensures the
configured 'source' lines exist in the shell init file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := newPipeline(cfg, upDryRun)
		result := p.Run(cmd.Context(), cfg, pipeline.Options{
			Force:   upForce,
			DryRun:  upDryRun,
			Confirm: confirmSync,
		})
		exitCode = result.ExitCode()
		return nil
	},
}

func init() {
	upCmd.Flags().BoolVarP(&upForce, "force", "f", false, "skip confirmation before syncing")
	upCmd.Flags().BoolVar(&upDryRun, "dry-run", false, "show what would change without writing files")
	rootCmd.AddCommand(upCmd)
}
