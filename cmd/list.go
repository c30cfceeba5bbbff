package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/health"
	"github.com/firefly-engineering/grove/internal/lifecycle"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workspaces",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}

var (
	aliveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	staleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runList(cmd *cobra.Command, args []string) error {
	statuses, err := manager().List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	if len(statuses) == 0 {
		logInfo("No workspaces found. Create one with: grove start <name>")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBRANCH\tBASE\tSESSION\tAGE\tPATH")
	fmt.Fprintln(w, "----\t------\t----\t-------\t---\t----")

	for _, st := range statuses {
		name := st.Name
		if st.Current {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			name, st.Branch, dash(st.Base), formatSession(st), formatAge(st, now), st.Path)
	}

	return w.Flush()
}

func formatSession(st lifecycle.Status) string {
	switch {
	case st.Prunable:
		return staleStyle.Render("⚠ missing")
	case st.Alive:
		return aliveStyle.Render("✓ " + st.Session)
	case st.Session != "":
		return staleStyle.Render("● stale")
	default:
		return idleStyle.Render("○ none")
	}
}

func formatAge(st lifecycle.Status, now time.Time) string {
	if st.Created.IsZero() {
		return "-"
	}
	return health.FormatAge(now.Sub(st.Created))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
