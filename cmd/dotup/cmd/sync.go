package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dotup/internal/pipeline"
)

var (
	syncForce  bool
	syncDryRun bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy the dotfile tree into the destination directory",
	Long: `Copies the hidden top-level entries of the source root into the destination
directory, minus the configured exclusions. Destination files are overwritten
when their content differs; files that exist only in the destination are
never removed. A marker file must be present in the source root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if !syncForce && !syncDryRun && !confirmSync() {
			pterm.Info.Println("Sync cancelled.")
			return nil
		}

		p := newPipeline(cfg, syncDryRun)
		result := &pipeline.RunResult{}
		p.SyncStage(cfg, result, syncDryRun)
		exitCode = result.ExitCode()
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "skip confirmation before syncing")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "show what would change without writing files")
	rootCmd.AddCommand(syncCmd)
}
