package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/config"
)

// wizardStep identifies the current step.
type wizardStep int

const (
	stepBase wizardStep = iota
	stepAgent
	stepEditor
	stepAdvanced
	stepConfirm
)

// advancedField identifies a field in the advanced step.
type advancedField int

const (
	advBranchPrefix advancedField = iota
	advServerCommand
	advPortStart
	advPortEnd
	advWorktreeRoot
	advFieldCount
)

// noEditor is the editor list entry that leaves codeEditor unset.
const noEditor = "none"

// wizardModel drives the multi-step configuration wizard.
type wizardModel struct {
	step    wizardStep
	initial *config.Config

	// Step 1: base branch
	baseInput textinput.Model

	// Step 2: agent
	agentInput textinput.Model

	// Step 3: editor
	editorList list.Model

	// Step 4: advanced
	advCursor    advancedField
	advInputs    [advFieldCount]textinput.Model
	advancedSeen bool

	// Collected values
	selectedBase   string
	selectedAgent  string
	selectedEditor string

	err    string
	width  int
	height int
}

// editorItem implements list.Item for editor selection.
type editorItem struct {
	name        string
	description string
}

func (e editorItem) Title() string       { return e.name }
func (e editorItem) Description() string { return e.description }
func (e editorItem) FilterValue() string { return e.name }

// wizardStyles
var (
	wizardTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginBottom(1)

	wizardStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wizardActiveStepStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	wizardLabelStyle = lipgloss.NewStyle().
				Bold(true).
				MarginBottom(1)

	wizardValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	wizardDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wizardErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))
)

func newTextInput(placeholder, value string, limit, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = width
	ti.SetValue(value)
	return ti
}

func newWizardModel(initial *config.Config) wizardModel {
	if initial == nil {
		initial = config.Default()
	}

	bi := newTextInput(config.FallbackBaseBranch, initial.BaseBranch, 128, 40)
	bi.Focus()

	ai := newTextInput(config.DefaultAgent, initial.AIAgent, 256, 60)

	var adv [advFieldCount]textinput.Model
	adv[advBranchPrefix] = newTextInput("feature/", initial.BranchPrefix, 64, 40)
	adv[advServerCommand] = newTextInput("npm run dev -- --port {port}", initial.ServerCommand, 256, 60)
	adv[advPortStart] = newTextInput(strconv.Itoa(config.DefaultPortStart), portValue(initial.PortRange.Start), 5, 10)
	adv[advPortEnd] = newTextInput(strconv.Itoa(config.DefaultPortEnd), portValue(initial.PortRange.End), 5, 10)
	adv[advWorktreeRoot] = newTextInput("../<repo>-worktrees", initial.WorktreeRoot, 256, 60)

	w := wizardModel{
		step:       stepBase,
		initial:    initial,
		baseInput:  bi,
		agentInput: ai,
		advInputs:  adv,
	}
	w.loadEditors()
	return w
}

func portValue(p int) string {
	if p == 0 {
		return ""
	}
	return strconv.Itoa(p)
}

func (w *wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update processes a message and returns (done, config, cmd).
// done=true with a non-nil config means the wizard completed.
// done=true with a nil config means it was cancelled.
func (w *wizardModel) Update(msg tea.Msg) (bool, *config.Config, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = size.Width
		w.height = size.Height
		w.editorList.SetSize(size.Width-4, max(size.Height-10, 5))
		return false, nil, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			return true, nil, nil
		case tea.KeyEsc:
			return w.handleBack()
		}
	}

	switch w.step {
	case stepBase:
		return w.updateBase(msg)
	case stepAgent:
		return w.updateAgent(msg)
	case stepEditor:
		return w.updateEditor(msg)
	case stepAdvanced:
		return w.updateAdvanced(msg)
	case stepConfirm:
		return w.updateConfirm(msg)
	}

	return false, nil, nil
}

func (w *wizardModel) handleBack() (bool, *config.Config, tea.Cmd) {
	w.err = ""
	switch w.step {
	case stepBase:
		// Esc at first step cancels wizard
		return true, nil, nil
	case stepAgent:
		w.step = stepBase
		w.agentInput.Blur()
		w.baseInput.Focus()
		return false, nil, textinput.Blink
	case stepEditor:
		w.step = stepAgent
		w.agentInput.Focus()
		return false, nil, textinput.Blink
	case stepAdvanced:
		w.blurAllAdvTextInputs()
		w.step = stepEditor
		return false, nil, nil
	case stepConfirm:
		w.step = stepEditor
		return false, nil, nil
	}
	return false, nil, nil
}

func (w *wizardModel) updateBase(msg tea.Msg) (bool, *config.Config, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		base := strings.TrimSpace(w.baseInput.Value())
		if strings.ContainsAny(base, " \t") {
			w.err = "branch names cannot contain whitespace"
			return false, nil, nil
		}
		w.err = ""
		w.selectedBase = base
		w.step = stepAgent
		w.baseInput.Blur()
		w.agentInput.Focus()
		return false, nil, textinput.Blink
	}

	var cmd tea.Cmd
	w.baseInput, cmd = w.baseInput.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateAgent(msg tea.Msg) (bool, *config.Config, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		w.selectedAgent = strings.TrimSpace(w.agentInput.Value())
		w.step = stepEditor
		w.agentInput.Blur()
		return false, nil, nil
	}

	var cmd tea.Cmd
	w.agentInput, cmd = w.agentInput.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateEditor(msg tea.Msg) (bool, *config.Config, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			w.selectEditor()
			w.step = stepConfirm
			return false, nil, nil
		case tea.KeyCtrlA:
			w.selectEditor()
			w.step = stepAdvanced
			w.advancedSeen = true
			return false, nil, w.focusCurrentTextField()
		}
	}

	var cmd tea.Cmd
	w.editorList, cmd = w.editorList.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) selectEditor() {
	w.selectedEditor = ""
	if item, ok := w.editorList.SelectedItem().(editorItem); ok && item.name != noEditor {
		w.selectedEditor = item.name
	}
}

func (w *wizardModel) activeTextInput() *textinput.Model {
	if w.advCursor < 0 || w.advCursor >= advFieldCount {
		return nil
	}
	return &w.advInputs[w.advCursor]
}

func (w *wizardModel) blurAllAdvTextInputs() {
	for i := range w.advInputs {
		w.advInputs[i].Blur()
	}
}

func (w *wizardModel) focusCurrentTextField() tea.Cmd {
	w.blurAllAdvTextInputs()
	if ti := w.activeTextInput(); ti != nil {
		ti.Focus()
		return textinput.Blink
	}
	return nil
}

func (w *wizardModel) updateAdvanced(msg tea.Msg) (bool, *config.Config, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			w.blurAllAdvTextInputs()
			w.step = stepConfirm
			return false, nil, nil
		case tea.KeyUp, tea.KeyShiftTab:
			w.advCursor = (w.advCursor - 1 + advFieldCount) % advFieldCount
			return false, nil, w.focusCurrentTextField()
		case tea.KeyDown, tea.KeyTab:
			w.advCursor = (w.advCursor + 1) % advFieldCount
			return false, nil, w.focusCurrentTextField()
		}
	}

	// Forward to text input
	if ti := w.activeTextInput(); ti != nil {
		var cmd tea.Cmd
		*ti, cmd = ti.Update(msg)
		return false, nil, cmd
	}
	return false, nil, nil
}

func (w *wizardModel) updateConfirm(msg tea.Msg) (bool, *config.Config, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "y":
			cfg, err := w.result()
			if err != nil {
				w.err = err.Error()
				return false, nil, nil
			}
			return true, cfg, nil
		case "n":
			// Restart wizard
			*w = newWizardModel(w.initial)
			return false, nil, textinput.Blink
		}
	}
	return false, nil, nil
}

// result builds the configuration from the collected values. Fields the
// wizard does not edit are carried over from the initial configuration.
func (w *wizardModel) result() (*config.Config, error) {
	cfg := *w.initial
	cfg.BaseBranch = w.selectedBase
	cfg.AIAgent = w.selectedAgent
	cfg.CodeEditor = w.selectedEditor
	cfg.BranchPrefix = strings.TrimSpace(w.advInputs[advBranchPrefix].Value())
	cfg.ServerCommand = strings.TrimSpace(w.advInputs[advServerCommand].Value())
	cfg.WorktreeRoot = strings.TrimSpace(w.advInputs[advWorktreeRoot].Value())

	start, err := parsePort(w.advInputs[advPortStart].Value(), config.DefaultPortStart)
	if err != nil {
		return nil, err
	}
	end, err := parsePort(w.advInputs[advPortEnd].Value(), config.DefaultPortEnd)
	if err != nil {
		return nil, err
	}
	cfg.PortRange = config.PortRange{Start: start, End: end}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parsePort(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return p, nil
}

func (w *wizardModel) View() string {
	var b strings.Builder

	b.WriteString(wizardTitleStyle.Render("Configure grove"))
	b.WriteString("\n")
	b.WriteString(w.progressBar())
	b.WriteString("\n\n")

	switch w.step {
	case stepBase:
		b.WriteString(wizardLabelStyle.Render("Default base branch:"))
		b.WriteString("\n")
		b.WriteString(w.baseInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Used when the current branch cannot be determined. Empty means main."))
	case stepAgent:
		b.WriteString(wizardLabelStyle.Render("Coding assistant command:"))
		b.WriteString("\n")
		b.WriteString(w.agentInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Empty means detect claude automatically."))
	case stepEditor:
		b.WriteString(wizardLabelStyle.Render("Editor for --open:"))
		b.WriteString("\n")
		b.WriteString(w.editorList.View())
		b.WriteString("\n")
		b.WriteString(wizardDimStyle.Render("Enter to confirm, Ctrl+A for advanced options."))
	case stepAdvanced:
		b.WriteString(wizardLabelStyle.Render("Advanced options:"))
		b.WriteString("\n\n")
		b.WriteString(w.renderTextInput(advBranchPrefix, "Branch prefix", "Prepended to every workspace branch"))
		b.WriteString("\n")
		b.WriteString(w.renderTextInput(advServerCommand, "Server command", "Dev server started in a third pane, {port} is substituted"))
		b.WriteString("\n")
		b.WriteString(w.renderTextInput(advPortStart, "Port range start", "First port handed to dev servers"))
		b.WriteString("\n")
		b.WriteString(w.renderTextInput(advPortEnd, "Port range end", "Last port handed to dev servers"))
		b.WriteString("\n")
		b.WriteString(w.renderTextInput(advWorktreeRoot, "Workspace root", "Directory holding the workspaces, relative to the repository"))
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Tab/arrows to move, Enter to continue, Esc to go back."))
	case stepConfirm:
		b.WriteString(wizardLabelStyle.Render("Confirm:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  Base branch: %s\n", wizardValueStyle.Render(orDefault(w.selectedBase, config.FallbackBaseBranch))))
		b.WriteString(fmt.Sprintf("  Agent:       %s\n", wizardValueStyle.Render(orDefault(w.selectedAgent, config.DefaultAgent+" (auto)"))))
		b.WriteString(fmt.Sprintf("  Editor:      %s\n", wizardValueStyle.Render(orDefault(w.selectedEditor, noEditor))))
		for i, label := range []string{"Branch prefix", "Server", "Ports from", "Ports to", "Root"} {
			if v := strings.TrimSpace(w.advInputs[i].Value()); v != "" {
				b.WriteString(fmt.Sprintf("  %-13s%s\n", label+":", wizardValueStyle.Render(v)))
			}
		}
		b.WriteString("\n")
		if w.err != "" {
			b.WriteString(wizardErrorStyle.Render("  " + w.err))
			b.WriteString("\n\n")
		}
		b.WriteString(wizardDimStyle.Render("Enter to save, n to restart, Esc to go back."))
	}

	if w.err != "" && w.step != stepConfirm {
		b.WriteString("\n\n")
		b.WriteString(wizardErrorStyle.Render(w.err))
	}

	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (w *wizardModel) progressBar() string {
	steps := []struct {
		num  int
		name string
	}{
		{1, "Base"},
		{2, "Agent"},
		{3, "Editor"},
		{4, "Confirm"},
	}

	currentStep := int(w.step) + 1
	switch w.step {
	case stepAdvanced:
		currentStep = int(stepEditor) + 1
	case stepConfirm:
		currentStep = 4
	}

	var parts []string
	for _, s := range steps {
		label := fmt.Sprintf("%d. %s", s.num, s.name)
		if s.num == currentStep {
			parts = append(parts, wizardActiveStepStyle.Render(label))
		} else {
			parts = append(parts, wizardStepStyle.Render(label))
		}
	}

	return strings.Join(parts, wizardDimStyle.Render(" > "))
}

func (w *wizardModel) renderTextInput(field advancedField, name, desc string) string {
	cursor := " "
	if w.advCursor == field {
		cursor = ">"
	}

	ti := &w.advInputs[field]
	val := strings.TrimSpace(ti.Value())
	if w.advCursor == field {
		line := fmt.Sprintf("  %s %s: %s", cursor, name, ti.View())
		return selectedStyle.Render(line) + "\n" + wizardDimStyle.Render("      "+desc)
	}
	if val == "" {
		line := fmt.Sprintf("  %s %s: (not set)", cursor, name)
		return line + "\n" + wizardDimStyle.Render("      "+desc)
	}
	line := fmt.Sprintf("  %s %s: %s", cursor, name, val)
	return line + "\n" + wizardDimStyle.Render("      "+desc)
}

// loadEditors fills the editor list with the known editors, selecting the
// configured one.
func (w *wizardModel) loadEditors() {
	var items []list.Item
	selected := 0
	names := append([]string{}, agent.Editors...)
	if cur := w.initial.CodeEditor; cur != "" && !contains(names, cur) {
		names = append([]string{cur}, names...)
	}
	for i, name := range names {
		items = append(items, editorItem{name: name, description: "open workspaces with " + name})
		if name == w.initial.CodeEditor {
			selected = i
		}
	}
	items = append(items, editorItem{name: noEditor, description: "use $VISUAL or $EDITOR"})
	if w.initial.CodeEditor == "" {
		selected = len(items) - 1
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 60, 12)
	l.Title = ""
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Select(selected)

	w.editorList = l
}

func contains(names []string, s string) bool {
	for _, v := range names {
		if v == s {
			return true
		}
	}
	return false
}

// wizardProgram adapts wizardModel to tea.Model.
type wizardProgram struct {
	wizard    wizardModel
	result    *config.Config
	cancelled bool
	done      bool
}

func (p *wizardProgram) Init() tea.Cmd { return p.wizard.Init() }

func (p *wizardProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, cfg, cmd := p.wizard.Update(msg)
	if done {
		p.done = true
		p.result = cfg
		p.cancelled = cfg == nil
		return p, tea.Quit
	}
	return p, cmd
}

func (p *wizardProgram) View() string {
	if p.done {
		return ""
	}
	return p.wizard.View()
}

// RunWizard runs the configuration wizard starting from initial. It
// returns nil when the user cancels.
func RunWizard(initial *config.Config) (*config.Config, error) {
	p := tea.NewProgram(&wizardProgram{wizard: newWizardModel(initial)}, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	wp := final.(*wizardProgram)
	if wp.cancelled {
		return nil, nil
	}
	return wp.result, nil
}
