package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/reconcile"
)

var (
	cleanupDryRun bool
	cleanupYes    bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove leftovers of workspaces that no longer exist",
	Long: `Reconciles the workspace root, the worktree registry, the metadata in
git config and the running tmux sessions, and repairs what disagrees.

Detects:
  - directory: a directory under the workspace root git does not know
  - registryEntry: a registered workspace whose directory is gone
  - sessionEntry: metadata or a tmux session with no workspace behind it,
    or a recorded session that is no longer running

Registered workspaces are never removed. Running it twice in a row finds
nothing the second time.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Only show what would be cleaned")
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	engine := app.Default.Reconcile
	ctx := cmd.Context()

	tasks, err := engine.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan workspaces: %w", err)
	}
	if len(tasks) == 0 {
		logSuccess("Nothing to clean up")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d item(s) to clean up:\n", len(tasks))
	for _, task := range tasks {
		fmt.Fprintf(out, "  [%s] %s\n", task.Kind, task.Description)
	}

	if cleanupDryRun {
		fmt.Fprintln(out, "\nDry run, nothing was changed. Run without --dry-run to clean up.")
		return nil
	}

	report := engine.Execute(ctx, tasks, func(tasks []reconcile.Task) bool {
		if cleanupYes {
			return true
		}
		if !interactive() {
			logWarning("Not a terminal, pass --yes to clean up")
			return false
		}
		return confirm(fmt.Sprintf("Clean up %d item(s)?", len(tasks)))
	})

	switch {
	case report.Skipped > 0:
		logInfo("Skipped %d item(s)", report.Skipped)
	case report.Failed > 0:
		logWarning("Cleaned up %d item(s), %d failed", report.Done, report.Failed)
	default:
		logSuccess("Cleaned up %d item(s)", report.Done)
	}
	return nil
}
