package cmd

import (
	"github.com/spf13/cobra"
)

var stopForce bool

var stopCmd = &cobra.Command{
	Use:   "stop [name]",
	Short: "Remove a workspace and its session",
	Long: `Stops the session of a workspace, runs the onStop hooks, removes the
worktree and its metadata, and returns you to the directory the workspace
was started from.

Without a name the workspace containing the current directory is stopped.
A workspace with uncommitted changes is left untouched unless --force is
given. The branch is kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Remove even with uncommitted changes")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) == 1 {
		name = args[0]
	}

	res, err := manager().Stop(cmd.Context(), name, stopForce)
	if err != nil {
		return err
	}
	if res.ReturnedToOrig {
		logInfo("Back in %s", res.OriginDir)
	}
	return nil
}
