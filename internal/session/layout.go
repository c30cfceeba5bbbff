package session

import (
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/multiplexer"
)

// Fixed pane roles. The terminal is always the first pane.
const (
	TerminalPane = 0
	AgentPane    = 1
	ServerPane   = 2
)

// Layout is the pane arrangement of a workspace session.
type Layout struct {
	Panes      int
	Split      multiplexer.Split
	AgentPane  int
	ServerPane int
}

// PlanLayout returns the layout for the given orientation and whether a
// dev-server pane is needed. The pane indices never depend on the
// orientation.
func PlanLayout(horizontal, server bool) Layout {
	l := Layout{
		Panes:      2,
		Split:      multiplexer.SplitVertical,
		AgentPane:  AgentPane,
		ServerPane: metadata.NoPane,
	}
	if horizontal {
		l.Split = multiplexer.SplitHorizontal
	}
	if server {
		l.Panes = 3
		l.ServerPane = ServerPane
	}
	return l
}

// splits returns the (pane, orientation) pairs that build the layout from a
// single pane. The server pane divides the agent pane across the other
// axis.
func (l Layout) splits() []split {
	out := []split{{pane: TerminalPane, orientation: l.Split}}
	if l.Panes > 2 {
		out = append(out, split{pane: AgentPane, orientation: l.Split.Opposite()})
	}
	return out
}

type split struct {
	pane        int
	orientation multiplexer.Split
}
