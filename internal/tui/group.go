package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/grove/internal/lifecycle"
)

// headerItem is a non-selectable group separator in the picker list.
type headerItem struct {
	label string
}

func (h headerItem) FilterValue() string { return "" }
func (h headerItem) Title() string       { return h.label }
func (h headerItem) Description() string { return "" }

const (
	groupActive = "Active sessions"
	groupIdle   = "Idle"
	groupStale  = "Needs cleanup"
)

// groupKey returns the grouping key for a workspace.
func groupKey(st lifecycle.Status) string {
	switch {
	case st.Prunable:
		return groupStale
	case st.Alive:
		return groupActive
	default:
		return groupIdle
	}
}

// groupOrder fixes the order groups appear in.
var groupOrder = []string{groupActive, groupIdle, groupStale}

// buildGroupedItems groups workspaces by session state and returns list
// items with headerItem separators. Workspaces keep their relative order
// within a group.
func buildGroupedItems(statuses []lifecycle.Status, now time.Time) []list.Item {
	if len(statuses) == 0 {
		return nil
	}

	groups := make(map[string][]lifecycle.Status)
	for _, st := range statuses {
		key := groupKey(st)
		groups[key] = append(groups[key], st)
	}

	var items []list.Item
	for _, key := range groupOrder {
		members := groups[key]
		if len(members) == 0 {
			continue
		}
		items = append(items, headerItem{label: fmt.Sprintf("%s (%d)", key, len(members))})
		for _, st := range members {
			items = append(items, workspaceItem{status: st, now: now})
		}
	}

	return items
}

// headerStyle is the style for group header items.
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("241")).
	PaddingLeft(2)

// groupedDelegate renders both headerItem and workspaceItem in the picker list.
type groupedDelegate struct {
	inner list.DefaultDelegate
}

// newGroupedDelegate creates a groupedDelegate wrapping a configured DefaultDelegate.
func newGroupedDelegate() groupedDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	return groupedDelegate{inner: delegate}
}

func (d groupedDelegate) Height() int                             { return d.inner.Height() }
func (d groupedDelegate) Spacing() int                            { return d.inner.Spacing() }
func (d groupedDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d groupedDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	if h, ok := item.(headerItem); ok {
		str := headerStyle.Render(h.label)
		fmt.Fprint(w, str)
		return
	}

	d.inner.Render(w, m, index, item)
}

// skipHeaders adjusts the cursor position to skip headerItem entries.
// direction should be 1 (down) or -1 (up).
func skipHeaders(l *list.Model, direction int) {
	items := l.Items()
	if len(items) == 0 {
		return
	}

	idx := l.Index()
	if _, ok := items[idx].(headerItem); !ok {
		return
	}

	// Try to move in the given direction first
	next := idx + direction
	if next >= 0 && next < len(items) {
		if _, ok := items[next].(headerItem); !ok {
			l.Select(next)
			return
		}
	}

	// Fall back to the opposite direction
	opposite := idx - direction
	if opposite >= 0 && opposite < len(items) {
		if _, ok := items[opposite].(headerItem); !ok {
			l.Select(opposite)
			return
		}
	}

	// Search forward from current position for any non-header
	for i := 0; i < len(items); i++ {
		candidate := (idx + i*direction + len(items)) % len(items)
		if _, ok := items[candidate].(headerItem); !ok {
			l.Select(candidate)
			return
		}
	}
}

// isHeaderSelected returns true if the currently selected item is a headerItem.
func isHeaderSelected(l *list.Model) bool {
	if item := l.SelectedItem(); item != nil {
		_, ok := item.(headerItem)
		return ok
	}
	return false
}

// navigationDirection returns 1 for down/j keys, -1 for up/k keys.
func navigationDirection(msg tea.KeyMsg) int {
	switch {
	case msg.String() == "up" || msg.String() == "k":
		return -1
	default:
		return 1
	}
}
