// Package session builds the tmux session of a workspace.
//
// Every session uses the same pane convention, whatever the split
// orientation:
//
//	pane 0  terminal (focused)
//	pane 1  coding assistant
//	pane 2  dev server, only when serverCommand is configured
//
// Launch kills any session of the same name, creates a new one, splits it,
// waits for the panes to appear by polling the pane count, starts the
// assistant and the server, and records the result in the metadata store.
// A failure after creation kills the session and clears the record, so the
// caller can fall back to a plain directory change.
package session
