package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/grove/internal/health"
	"github.com/firefly-engineering/grove/internal/lifecycle"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionSwitch
	ActionNew
	ActionStop
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action    Action
	Workspace *lifecycle.Status
}

// workspaceItem implements list.Item for workspace display
type workspaceItem struct {
	status lifecycle.Status
	now    time.Time
}

func (i workspaceItem) Title() string {
	title := i.status.Name
	if i.status.DisplayName != "" && i.status.DisplayName != i.status.Name {
		title = fmt.Sprintf("%s (%s)", i.status.Name, i.status.DisplayName)
	}
	if i.status.Current {
		title += " *"
	}
	return title
}

func (i workspaceItem) Description() string {
	return fmt.Sprintf("%s %s | %s | %s",
		statusIcon(i.status),
		branchLabel(i.status),
		i.age(),
		truncatePath(i.status.Path, 30),
	)
}

func (i workspaceItem) FilterValue() string {
	return i.status.Name
}

func (i workspaceItem) age() string {
	if i.status.Created.IsZero() {
		return "-"
	}
	return health.FormatAge(i.now.Sub(i.status.Created))
}

func statusIcon(st lifecycle.Status) string {
	switch {
	case st.Prunable:
		return "⚠"
	case st.Alive:
		return "✓"
	case st.Session != "":
		return "●"
	default:
		return "○"
	}
}

func branchLabel(st lifecycle.Status) string {
	if st.Base == "" {
		return st.Branch
	}
	return st.Branch + " <- " + st.Base
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the workspace picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new workspace picker
func NewPicker(statuses []lifecycle.Status) Model {
	items := buildGroupedItems(statuses, time.Now())

	l := list.New(items, newGroupedDelegate(), 80, 20)
	l.Title = "grove - Switch Workspace"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	skipHeaders(&l, 1)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(workspaceItem); ok {
				st := item.status
				m.result = PickerResult{Action: ActionSwitch, Workspace: &st}
				m.quitting = true
				return m, tea.Quit
			}

		case "n":
			m.result = PickerResult{Action: ActionNew}
			m.quitting = true
			return m, tea.Quit

		case "d":
			if item, ok := m.list.SelectedItem().(workspaceItem); ok {
				st := item.status
				m.result = PickerResult{Action: ActionStop, Workspace: &st}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit

		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			if isHeaderSelected(&m.list) {
				skipHeaders(&m.list, navigationDirection(msg))
			}
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Switch  [n] New  [d] Stop  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive workspace picker
func RunPicker(statuses []lifecycle.Status) (PickerResult, error) {
	if len(statuses) == 0 {
		return PickerResult{Action: ActionNew}, nil
	}

	m := NewPicker(statuses)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive picker that just lists workspaces
func SimplePicker(statuses []lifecycle.Status) string {
	var sb strings.Builder

	sb.WriteString("grove - Workspaces\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(statuses) == 0 {
		sb.WriteString("No workspaces found.\n")
		sb.WriteString("Create one with: grove start <name>\n")
		return sb.String()
	}

	for i, st := range statuses {
		sb.WriteString(fmt.Sprintf("%d. %s %s (%s)\n",
			i+1, statusIcon(st), st.Name, branchLabel(st)))
		session := st.Session
		if session == "" {
			session = "none"
		}
		sb.WriteString(fmt.Sprintf("   Session: %s | Path: %s\n\n",
			session, truncatePath(st.Path, 40)))
	}

	sb.WriteString("Switch with: grove switch <name>\n")
	return sb.String()
}
