package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/lifecycle"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/tui"
)

var switchOpts lifecycle.ResumeOptions

// runPicker is replaced in tests.
var runPicker = tui.RunPicker

var switchCmd = &cobra.Command{
	Use:   "switch [name]",
	Short: "Move to an existing workspace",
	Long: `Attaches to the session of an existing workspace, recreating it when it
is gone. Unlike resume, switch never creates a workspace.

Without a name on an interactive terminal a picker is shown:
  Enter  - Switch to the selected workspace
  n      - Start a new workspace
  d      - Stop the selected workspace
  q/Esc  - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSwitch,
}

func init() {
	switchCmd.Flags().BoolVar(&switchOpts.Horizontal, "hs", false, "Split panes horizontally")
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	m := manager()

	if len(args) == 1 {
		res, err := m.Switch(ctx, args[0], switchOpts)
		if err != nil {
			return err
		}
		reportEntered(res)
		return nil
	}

	statuses, err := m.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}
	if !interactive() {
		fmt.Fprint(cmd.OutOrStdout(), tui.SimplePicker(statuses))
		return nil
	}

	result, err := runPicker(statuses)
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}
	logging.Debug("picker result", "action", result.Action)

	switch result.Action {
	case tui.ActionSwitch:
		res, err := m.Switch(ctx, result.Workspace.Name, switchOpts)
		if err != nil {
			return err
		}
		reportEntered(res)

	case tui.ActionStop:
		if !confirm(fmt.Sprintf("Remove workspace %s?", result.Workspace.Name)) {
			return nil
		}
		if _, err := m.Stop(ctx, result.Workspace.Name, false); err != nil {
			return err
		}

	case tui.ActionNew:
		name := prompt("Workspace name: ")
		if name == "" {
			return errors.ValidationError("no workspace name given")
		}
		res, err := m.Start(ctx, name, lifecycle.StartOptions{Horizontal: switchOpts.Horizontal})
		if err != nil {
			return err
		}
		reportEntered(res)

	case tui.ActionQuit:
		// Just exit cleanly
	}

	return nil
}
