// Package logging provides logging utilities for grove.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("creating worktree", "name", name, "base", base)
//	logging.Warn("tmux not found", "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Creating workspace %s...", name)
//	logging.UserSuccess("Workspace %s created", name)
//	logging.UserWarning("tmux not found, continuing without a session")
//	logging.UserError("%v", err)
//	logging.UserHint("known workspaces: %s", names)
//
// Output destinations:
//   - UserInfo, UserSuccess: Stdout (os.Stdout by default)
//   - UserWarning, UserError, UserHint: Stderr (os.Stderr by default)
//
// # Status Indicators
//
// User functions prepend status indicators, colored by lipgloss when the
// terminal supports it:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
