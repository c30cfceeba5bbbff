package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output functions with status prefixes.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	// Stdout receives UserInfo and UserSuccess output.
	Stdout io.Writer = os.Stdout
	// Stderr receives UserWarning and UserError output.
	Stderr io.Writer = os.Stderr
)

var (
	infoPrefix    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("ℹ")
	successPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	warningPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("⚠")
	errorPrefix   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("✗")
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, infoPrefix+" "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, successPrefix+" "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, warningPrefix+" "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, errorPrefix+" "+format+"\n", args...)
}

// UserHint prints a dimmed remediation hint to stderr.
func UserHint(format string, args ...interface{}) {
	fmt.Fprintln(Stderr, hintStyle.Render("  "+fmt.Sprintf(format, args...)))
}
