// Package multiplexer controls terminal multiplexer sessions for grove
// workspaces.
package multiplexer

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/grove/internal/system"
)

// Type identifies a terminal multiplexer backend.
type Type string

const (
	TypeTmux Type = "tmux"
)

// Split is the orientation of a pane split, named after the divider line.
type Split int

const (
	// SplitVertical places panes side by side.
	SplitVertical Split = iota
	// SplitHorizontal stacks panes on top of each other.
	SplitHorizontal
)

// Opposite returns the other orientation.
func (s Split) Opposite() Split {
	if s == SplitVertical {
		return SplitHorizontal
	}
	return SplitVertical
}

func (s Split) String() string {
	if s == SplitHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Multiplexer is the interface that every multiplexer backend implements.
// Session arguments are session names; pane indices count from zero.
type Multiplexer interface {
	// Type returns the multiplexer type identifier.
	Type() Type

	// Available reports whether the multiplexer binary is installed.
	Available() bool

	// HasSession reports whether a session with exactly this name is alive.
	HasSession(ctx context.Context, session string) bool

	// ListSessions returns the names of all live sessions. A server that
	// is not running has no sessions.
	ListSessions(ctx context.Context) ([]string, error)

	// NewSession creates a detached session whose first pane starts in dir.
	NewSession(ctx context.Context, session, dir string) error

	// KillSession destroys a session.
	KillSession(ctx context.Context, session string) error

	// SplitPane splits pane in the session's current window. The new pane
	// starts in dir.
	SplitPane(ctx context.Context, session string, pane int, split Split, dir string) error

	// PaneCount returns the number of panes in the session's current window.
	PaneCount(ctx context.Context, session string) (int, error)

	// SendKeys types command into a pane and presses Enter.
	SendKeys(ctx context.Context, session string, pane int, command string) error

	// SelectPane focuses a pane.
	SelectPane(ctx context.Context, session string, pane int) error

	// SetSessionOption sets a user option on the session. key is given
	// without the leading "@".
	SetSessionOption(ctx context.Context, session, key, value string) error

	// SessionOption returns a user option of the session, or "" when it is
	// not set.
	SessionOption(ctx context.Context, session, key string) (string, error)

	// Probe checks that the session can be reached by a client.
	Probe(ctx context.Context, session string) error

	// Attach connects the calling terminal to the session, switching the
	// current client when already inside the multiplexer.
	Attach(ctx context.Context, session string) error

	// AttachCommand returns the shell command a user can run to attach.
	AttachCommand(session string) string
}

// New returns a Multiplexer for the given type.
// Defaults to TypeTmux for empty or unrecognised values.
func New(t Type, exec system.CommandExecutor) Multiplexer {
	return NewTmux(exec)
}

// PaneTarget returns the target string for a pane of the session's
// current window.
func PaneTarget(session string, pane int) string {
	return fmt.Sprintf("=%s:.%d", session, pane)
}
