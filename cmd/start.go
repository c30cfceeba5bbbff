package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/lifecycle"
)

var startOpts lifecycle.StartOptions

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Create a workspace and open a session in it",
	Long: `Creates a git worktree for <name> on a new branch and opens a tmux
session with a shell, the coding assistant and, when serverCommand is
configured, a dev server.

The base branch is --base, else the current branch, else the configured
baseBranch when it exists, else main. Without tmux, or with --no-session,
grove changes into the workspace instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startOpts.Base, "base", "", "Branch to create the workspace from")
	startCmd.Flags().BoolVar(&startOpts.Horizontal, "hs", false, "Split panes horizontally")
	startCmd.Flags().BoolVar(&startOpts.NoSession, "no-session", false, "Do not create a tmux session")
	startCmd.Flags().BoolVar(&startOpts.OpenEditor, "open", false, "Open the workspace in an editor")
	startCmd.Flags().StringVar(&startOpts.DisplayName, "display-name", "", "Human-readable session label")
	startCmd.Flags().StringVar(&startOpts.Description, "description", "", "Free-text session description")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	res, err := manager().Start(cmd.Context(), args[0], startOpts)
	if err != nil {
		return err
	}
	reportEntered(res)
	return nil
}
