// Package tui provides terminal user interface components for grove.
//
// This package uses the Bubble Tea framework for the two interactive
// surfaces of the CLI: the workspace picker and the configuration wizard.
//
// # Workspace Picker
//
// The picker lists workspaces grouped by session state:
//
//	result, err := tui.RunPicker(statuses)
//	switch result.Action {
//	case tui.ActionSwitch:
//	    // Switch to result.Workspace
//	case tui.ActionNew:
//	    // Prompt for a name and start a workspace
//	case tui.ActionStop:
//	    // Stop result.Workspace
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// Keyboard navigation (j/k or arrows) skips group headers. Enter switches,
// n starts a new workspace, d stops the selected one and q quits.
//
// # Configuration Wizard
//
// RunWizard walks through the base branch, the coding assistant and the
// editor, with Ctrl+A opening the advanced options. The result is
// validated before it is returned; a nil result means the user cancelled.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
