package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/metadata"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show detailed status of a workspace",
	Long: `Shows the branch, origin and session of a workspace. Without a name the
workspace containing the current directory is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := app.Default
	m := manager()

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		detected, err := m.Detect()
		if err != nil {
			return err
		}
		name = detected
	}

	statuses, err := m.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}
	var names []string
	for _, st := range statuses {
		names = append(names, st.Name)
		if st.Name != name {
			continue
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Workspace: %s\n", st.Name)
		if st.DisplayName != "" {
			fmt.Fprintf(out, "Label: %s\n", st.DisplayName)
		}
		if st.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", st.Description)
		}
		fmt.Fprintf(out, "Path: %s\n", st.Path)
		fmt.Fprintf(out, "Branch: %s\n", st.Branch)
		fmt.Fprintf(out, "Base: %s\n", dash(st.Base))
		if rec, ok, err := metadata.LoadWorkspace(ctx, a.Store, name); err == nil && ok {
			fmt.Fprintf(out, "Origin: %s (%s)\n", dash(rec.OriginDir), dash(rec.OriginBranch))
		}
		fmt.Fprintf(out, "Age: %s\n", formatAge(st, time.Now()))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "Session:")
		fmt.Fprintf(out, "  Name: %s\n", dash(st.Session))
		fmt.Fprintf(out, "  Running: %s\n", boolStatus(st.Alive))
		if st.ServerPort != 0 {
			fmt.Fprintf(out, "  Server port: %d\n", st.ServerPort)
		}
		if st.Alive {
			fmt.Fprintf(out, "  Attach: %s\n", a.Sessions.AttachCommand(st.Session))
		}
		if st.Prunable {
			logWarning("The directory of %s is missing, run grove cleanup", name)
		}
		return nil
	}

	return errors.WorkspaceNotFound(name, names)
}

func boolStatus(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
