package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firefly-engineering/grove/internal/lifecycle"
)

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path   string
		maxLen int
		want   string
	}{
		{"/short", 30, "/short"},
		{"/exactly/ten", 12, "/exactly/ten"},
		{"/a/very/long/path/to/a/workspace", 15, ".../a/workspace"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := truncatePath(tt.path, tt.maxLen); got != tt.want {
				t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestWorkspaceItemMethods(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := workspaceItem{
		status: lifecycle.Status{
			Name:        "auth",
			Path:        "/repo-worktrees/auth",
			Branch:      "feature/auth",
			Base:        "main",
			DisplayName: "Login flow",
			Created:     now.Add(-2 * time.Hour),
			Current:     true,
		},
		now: now,
	}

	if got := item.Title(); got != "auth (Login flow) *" {
		t.Errorf("Title() = %q", got)
	}
	if got := item.FilterValue(); got != "auth" {
		t.Errorf("FilterValue() = %q, want auth", got)
	}
	desc := item.Description()
	for _, want := range []string{"feature/auth <- main", "2h", "/repo-worktrees/auth"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Description() = %q, missing %q", desc, want)
		}
	}

	t.Run("unknown age", func(t *testing.T) {
		item := workspaceItem{status: lifecycle.Status{Name: "x", Branch: "x"}, now: now}
		if !strings.Contains(item.Description(), "| - |") {
			t.Errorf("Description() = %q, want a dash for unknown age", item.Description())
		}
	})
}

func TestStatusIcons(t *testing.T) {
	tests := []struct {
		name   string
		status lifecycle.Status
		icon   string
	}{
		{"alive", lifecycle.Status{Session: "s", Alive: true}, "✓"},
		{"stale", lifecycle.Status{Session: "s"}, "●"},
		{"none", lifecycle.Status{}, "○"},
		{"prunable", lifecycle.Status{Prunable: true}, "⚠"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusIcon(tt.status); got != tt.icon {
				t.Errorf("statusIcon() = %q, want %q", got, tt.icon)
			}
		})
	}
}

func testStatuses() []lifecycle.Status {
	return []lifecycle.Status{
		{Name: "auth", Branch: "auth", Path: "/w/auth", Session: "repo_auth", Alive: true},
		{Name: "billing", Branch: "billing", Path: "/w/billing"},
	}
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelKeyHandling(t *testing.T) {
	t.Run("initial selection skips header", func(t *testing.T) {
		m := NewPicker(testStatuses())
		if isHeaderSelected(&m.list) {
			t.Fatal("header should not be selected initially")
		}
	})

	t.Run("enter switches", func(t *testing.T) {
		m, cmd := press(NewPicker(testStatuses()), tea.KeyMsg{Type: tea.KeyEnter})
		if m.result.Action != ActionSwitch {
			t.Errorf("Action = %v, want ActionSwitch", m.result.Action)
		}
		if m.result.Workspace == nil || m.result.Workspace.Name != "auth" {
			t.Errorf("Workspace = %+v, want auth", m.result.Workspace)
		}
		if cmd == nil {
			t.Error("Should return tea.Quit command")
		}
	})

	t.Run("d stops selected", func(t *testing.T) {
		m, _ := press(NewPicker(testStatuses()), runeKey('d'))
		if m.result.Action != ActionStop {
			t.Errorf("Action = %v, want ActionStop", m.result.Action)
		}
		if m.result.Workspace == nil || m.result.Workspace.Name != "auth" {
			t.Errorf("Workspace = %+v, want auth", m.result.Workspace)
		}
	})

	t.Run("down skips header", func(t *testing.T) {
		m, _ := press(NewPicker(testStatuses()), tea.KeyMsg{Type: tea.KeyDown})
		if isHeaderSelected(&m.list) {
			t.Fatal("header selected after moving down")
		}
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.result.Workspace == nil || m.result.Workspace.Name != "billing" {
			t.Errorf("Workspace = %+v, want billing", m.result.Workspace)
		}
	})

	t.Run("quit with q", func(t *testing.T) {
		m, cmd := press(NewPicker(testStatuses()), runeKey('q'))
		if m.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", m.result.Action)
		}
		if !m.quitting {
			t.Error("Model should be quitting")
		}
		if cmd == nil {
			t.Error("Should return tea.Quit command")
		}
	})

	t.Run("quit with esc", func(t *testing.T) {
		m, _ := press(NewPicker(testStatuses()), tea.KeyMsg{Type: tea.KeyEsc})
		if m.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", m.result.Action)
		}
	})

	t.Run("new workspace with n", func(t *testing.T) {
		m, _ := press(NewPicker(testStatuses()), runeKey('n'))
		if m.result.Action != ActionNew {
			t.Errorf("Action = %v, want ActionNew", m.result.Action)
		}
	})

	t.Run("window size update", func(t *testing.T) {
		next, cmd := NewPicker(testStatuses()).Update(tea.WindowSizeMsg{Width: 100, Height: 50})
		m := next.(Model)
		if m.width != 100 || m.height != 50 {
			t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
		}
		if cmd != nil {
			t.Error("Window size update should not return a command")
		}
	})
}

func TestModelView(t *testing.T) {
	t.Run("normal view contains help", func(t *testing.T) {
		view := NewPicker(testStatuses()).View()
		for _, want := range []string{"[enter] Switch", "[n] New", "[d] Stop", "[q] Quit"} {
			if !strings.Contains(view, want) {
				t.Errorf("View should contain %q", want)
			}
		}
	})

	t.Run("quitting view is empty", func(t *testing.T) {
		m := NewPicker(testStatuses())
		m.quitting = true
		if view := m.View(); view != "" {
			t.Errorf("Quitting view should be empty, got %q", view)
		}
	})
}

func TestRunPickerEmpty(t *testing.T) {
	result, err := RunPicker(nil)
	if err != nil {
		t.Fatalf("RunPicker() error = %v", err)
	}
	if result.Action != ActionNew {
		t.Errorf("Action = %v, want ActionNew", result.Action)
	}
}

func TestSimplePicker(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := SimplePicker(nil)
		if !strings.Contains(out, "No workspaces found.") {
			t.Errorf("output = %q", out)
		}
		if !strings.Contains(out, "grove start <name>") {
			t.Errorf("output should suggest grove start, got %q", out)
		}
	})

	t.Run("lists workspaces", func(t *testing.T) {
		out := SimplePicker(testStatuses())
		for _, want := range []string{"1. ✓ auth", "Session: repo_auth", "2. ○ billing", "Session: none", "grove switch <name>"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}
