package multiplexer

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/grove/internal/system"
)

func TestNewDefault(t *testing.T) {
	mux := New("", system.NewMockExecutor())
	if mux.Type() != TypeTmux {
		t.Errorf("New(\"\") type = %q, want %q", mux.Type(), TypeTmux)
	}
}

func TestNewUnknown(t *testing.T) {
	mux := New("unknown", system.NewMockExecutor())
	if mux.Type() != TypeTmux {
		t.Errorf("New(\"unknown\") type = %q, want %q (default)", mux.Type(), TypeTmux)
	}
}

func TestSplitOpposite(t *testing.T) {
	if SplitVertical.Opposite() != SplitHorizontal || SplitHorizontal.Opposite() != SplitVertical {
		t.Error("Opposite should swap orientations")
	}
}

func TestPaneTarget(t *testing.T) {
	if got := PaneTarget("repo_auth", 2); got != "=repo_auth:.2" {
		t.Errorf("PaneTarget = %q, want %q", got, "=repo_auth:.2")
	}
}

// --- Tmux tests ---

func TestTmuxAvailable(t *testing.T) {
	exec := system.NewMockExecutor()
	mux := NewTmux(exec)
	if mux.Available() {
		t.Error("tmux should be unavailable when not on PATH")
	}
	exec.AddPath("tmux", "/usr/bin/tmux")
	if !mux.Available() {
		t.Error("tmux should be available")
	}
}

func TestTmuxHasSession(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("tmux has-session -t =repo_dead", nil, &system.MockExitError{Code: 1})
	mux := NewTmux(exec)
	ctx := context.Background()

	if !mux.HasSession(ctx, "repo_auth") {
		t.Error("repo_auth should be alive")
	}
	if mux.HasSession(ctx, "repo_dead") {
		t.Error("repo_dead should not be alive")
	}
}

func TestTmuxListSessions(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("tmux list-sessions", []byte("repo_auth\nother\n\n"), nil)

	got, err := NewTmux(exec).ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"repo_auth", "other"}) {
		t.Errorf("ListSessions = %v", got)
	}
}

func TestTmuxListSessions_NoServer(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("tmux list-sessions", []byte("no server running on /tmp/tmux-1000/default\n"), &system.MockExitError{Code: 1})

	got, err := NewTmux(exec).ListSessions(context.Background())
	if err != nil || len(got) != 0 {
		t.Errorf("ListSessions = %v, %v; want empty, nil", got, err)
	}
}

func TestTmuxListSessions_Failure(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("tmux list-sessions", []byte("protocol version mismatch"), &system.MockExitError{Code: 1})

	if _, err := NewTmux(exec).ListSessions(context.Background()); err == nil {
		t.Error("ListSessions should fail")
	}
}

func TestTmuxNewSession(t *testing.T) {
	exec := system.NewMockExecutor()
	if err := NewTmux(exec).NewSession(context.Background(), "repo_auth", "/ws/auth"); err != nil {
		t.Fatalf("NewSession error: %v", err)
	}

	want := []string{
		"tmux new-session -d -s repo_auth -c /ws/auth",
		"tmux set-option -w -t =repo_auth pane-base-index 0",
	}
	assertCommands(t, exec, want)
}

func TestTmuxSplitPane(t *testing.T) {
	tests := []struct {
		split Split
		want  string
	}{
		{SplitVertical, "tmux split-window -h -t =s:.0 -c /ws"},
		{SplitHorizontal, "tmux split-window -v -t =s:.1 -c /ws"},
	}

	for i, tt := range tests {
		t.Run(tt.split.String(), func(t *testing.T) {
			exec := system.NewMockExecutor()
			if err := NewTmux(exec).SplitPane(context.Background(), "s", i, tt.split, "/ws"); err != nil {
				t.Fatalf("SplitPane error: %v", err)
			}
			assertCommands(t, exec, []string{tt.want})
		})
	}
}

func TestTmuxPaneCount(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("tmux list-panes -t =s:", []byte("0\n1\n2\n"), nil)

	n, err := NewTmux(exec).PaneCount(context.Background(), "s")
	if err != nil || n != 3 {
		t.Errorf("PaneCount = %d, %v; want 3, nil", n, err)
	}
}

func TestTmuxSendKeys(t *testing.T) {
	exec := system.NewMockExecutor()
	if err := NewTmux(exec).SendKeys(context.Background(), "s", 1, "claude --resume"); err != nil {
		t.Fatalf("SendKeys error: %v", err)
	}

	if len(exec.Commands) != 2 {
		t.Fatalf("got %d commands, want 2", len(exec.Commands))
	}
	literal := exec.Commands[0]
	if !reflect.DeepEqual(literal.Args, []string{"send-keys", "-t", "=s:.1", "-l", "claude --resume"}) {
		t.Errorf("literal send-keys args = %v", literal.Args)
	}
	if got := exec.Commands[1].String(); got != "tmux send-keys -t =s:.1 Enter" {
		t.Errorf("enter command = %q", got)
	}
}

func TestTmuxSessionOptions(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("tmux show-options -q -v -t =s @grove-owner", []byte("/src/repo/.git\n"), nil)
	mux := NewTmux(exec)
	ctx := context.Background()

	if err := mux.SetSessionOption(ctx, "s", "grove-owner", "/src/repo/.git"); err != nil {
		t.Fatalf("SetSessionOption error: %v", err)
	}
	got, err := mux.SessionOption(ctx, "s", "grove-owner")
	if err != nil || got != "/src/repo/.git" {
		t.Errorf("SessionOption = %q, %v", got, err)
	}
	assertCommands(t, exec, []string{
		"tmux set-option -t =s @grove-owner /src/repo/.git",
		"tmux show-options -q -v -t =s @grove-owner",
	})
}

func TestTmuxErrorsCarryOutput(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("tmux kill-session", []byte("can't find session: =s"), &system.MockExitError{Code: 1})

	err := NewTmux(exec).KillSession(context.Background(), "s")
	if err == nil {
		t.Fatal("KillSession should fail")
	}
	if got := err.Error(); !strings.Contains(got, "can't find session") {
		t.Errorf("error %q should include tmux output", got)
	}
}

func TestTmuxAttach(t *testing.T) {
	t.Run("outside tmux", func(t *testing.T) {
		t.Setenv("TMUX", "")
		exec := system.NewMockExecutor()
		if err := NewTmux(exec).Attach(context.Background(), "s"); err != nil {
			t.Fatalf("Attach error: %v", err)
		}
		assertCommands(t, exec, []string{"tmux attach-session -t =s"})
	})

	t.Run("inside tmux", func(t *testing.T) {
		t.Setenv("TMUX", "/tmp/tmux-1000/default,123,0")
		exec := system.NewMockExecutor()
		if err := NewTmux(exec).Attach(context.Background(), "s"); err != nil {
			t.Fatalf("Attach error: %v", err)
		}
		assertCommands(t, exec, []string{"tmux switch-client -t =s"})
	})

	t.Run("attach failure", func(t *testing.T) {
		t.Setenv("TMUX", "")
		exec := system.NewMockExecutor()
		exec.InteractiveErr = errors.New("open terminal failed: not a terminal")
		if err := NewTmux(exec).Attach(context.Background(), "s"); err == nil {
			t.Error("Attach should fail")
		}
	})
}

func TestTmuxAttachCommand(t *testing.T) {
	mux := NewTmux(system.NewMockExecutor())
	got := mux.AttachCommand("my repo_auth")

	args, err := shellquote.Split(got)
	if err != nil {
		t.Fatalf("AttachCommand %q does not parse: %v", got, err)
	}
	want := []string{"tmux", "attach-session", "-t", "my repo_auth"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("AttachCommand parses to %v, want %v", args, want)
	}
}

func assertCommands(t *testing.T, exec *system.MockExecutor, want []string) {
	t.Helper()
	if len(exec.Commands) != len(want) {
		t.Fatalf("got %d commands %v, want %d", len(exec.Commands), exec.Commands, len(want))
	}
	for i, cmd := range exec.Commands {
		if cmd.String() != want[i] {
			t.Errorf("command %d = %q, want %q", i, cmd.String(), want[i])
		}
	}
}
