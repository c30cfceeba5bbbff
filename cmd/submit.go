package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/lifecycle"
)

var (
	submitOpts lifecycle.SubmitOptions
	submitYes  bool
)

var submitCmd = &cobra.Command{
	Use:     "submit",
	Aliases: []string{"finish"},
	Short:   "Push the current workspace and open a pull request",
	Long: `Pushes the branch of the workspace containing the current directory and
opens a pull request with gh. The base is --base-branch, else the branch
the workspace was created from, else the configured baseBranch, else main.

Afterwards grove offers to stop the workspace; --yes stops it without
asking.`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitOpts.Title, "title", "", "Pull request title (default: filled from commits)")
	submitCmd.Flags().StringVar(&submitOpts.BaseBranch, "base-branch", "", "Branch the pull request targets")
	submitCmd.Flags().BoolVar(&submitOpts.NoPR, "no-pr", false, "Push only, do not open a pull request")
	submitCmd.Flags().BoolVar(&submitOpts.NoVerify, "no-verify", false, "Skip git push hooks")
	submitCmd.Flags().BoolVarP(&submitYes, "yes", "y", false, "Stop the workspace afterwards without asking")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	opts := submitOpts
	opts.Stop = submitYes
	opts.OfferStop = !submitYes && interactive()

	res, err := manager().Submit(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if !res.Stopped {
		logInfo("Stop the workspace later with: grove stop %s", res.Name)
	}
	return nil
}
