package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/lifecycle"
)

var resumeOpts lifecycle.ResumeOptions

var resumeCmd = &cobra.Command{
	Use:   "resume <name>",
	Short: "Reenter a workspace, starting it if needed",
	Long: `Attaches to the session of <name>. A session that no longer exists is
recreated. When the workspace itself does not exist it is started.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().BoolVar(&resumeOpts.Horizontal, "hs", false, "Split panes horizontally")
	resumeCmd.Flags().BoolVar(&resumeOpts.NoSession, "no-session", false, "Do not create a tmux session")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	res, err := manager().Resume(cmd.Context(), args[0], resumeOpts)
	if err != nil {
		return err
	}
	reportEntered(res)
	return nil
}
