package multiplexer

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/system"
)

// Tmux implements Multiplexer for tmux.
type Tmux struct {
	exec system.CommandExecutor
}

// NewTmux returns a tmux client running commands through exec.
func NewTmux(exec system.CommandExecutor) *Tmux {
	return &Tmux{exec: exec}
}

func (t *Tmux) Type() Type { return TypeTmux }

func (t *Tmux) Available() bool {
	_, err := t.exec.LookPath("tmux")
	return err == nil
}

func (t *Tmux) tmux(ctx context.Context, op string, args ...string) ([]byte, error) {
	logging.Debug("tmux", "args", args)
	out, err := t.exec.Execute(ctx, "tmux", args...)
	if err != nil {
		return out, errors.ExternalTool("tmux", op, out, err)
	}
	return out, nil
}

// exact makes tmux match the session name exactly instead of by prefix.
func exact(session string) string {
	return "=" + session
}

func (t *Tmux) HasSession(ctx context.Context, session string) bool {
	_, err := t.exec.Execute(ctx, "tmux", "has-session", "-t", exact(session))
	return err == nil
}

func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	out, err := t.exec.Execute(ctx, "tmux", "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if noServer(out) {
			return nil, nil
		}
		return nil, errors.ExternalTool("tmux", "list-sessions", out, err)
	}
	return lines(out), nil
}

// noServer reports whether tmux failed only because no server is running.
func noServer(out []byte) bool {
	s := string(out)
	return strings.Contains(s, "no server running") ||
		strings.Contains(s, "error connecting") ||
		strings.Contains(s, "No such file or directory")
}

func (t *Tmux) NewSession(ctx context.Context, session, dir string) error {
	if _, err := t.tmux(ctx, "new-session", "new-session", "-d", "-s", session, "-c", dir); err != nil {
		return err
	}
	// Pane indices must start at zero whatever the user's tmux.conf says.
	_, err := t.tmux(ctx, "set-option", "set-option", "-w", "-t", exact(session), "pane-base-index", "0")
	return err
}

func (t *Tmux) KillSession(ctx context.Context, session string) error {
	_, err := t.tmux(ctx, "kill-session", "kill-session", "-t", exact(session))
	return err
}

func (t *Tmux) SplitPane(ctx context.Context, session string, pane int, split Split, dir string) error {
	flag := "-h"
	if split == SplitHorizontal {
		flag = "-v"
	}
	_, err := t.tmux(ctx, "split-window", "split-window", flag, "-t", PaneTarget(session, pane), "-c", dir)
	return err
}

func (t *Tmux) PaneCount(ctx context.Context, session string) (int, error) {
	out, err := t.tmux(ctx, "list-panes", "list-panes", "-t", exact(session)+":", "-F", "#{pane_index}")
	if err != nil {
		return 0, err
	}
	return len(lines(out)), nil
}

func (t *Tmux) SendKeys(ctx context.Context, session string, pane int, command string) error {
	target := PaneTarget(session, pane)
	if _, err := t.tmux(ctx, "send-keys", "send-keys", "-t", target, "-l", command); err != nil {
		return err
	}
	_, err := t.tmux(ctx, "send-keys", "send-keys", "-t", target, "Enter")
	return err
}

func (t *Tmux) SelectPane(ctx context.Context, session string, pane int) error {
	_, err := t.tmux(ctx, "select-pane", "select-pane", "-t", PaneTarget(session, pane))
	return err
}

func (t *Tmux) SetSessionOption(ctx context.Context, session, key, value string) error {
	_, err := t.tmux(ctx, "set-option", "set-option", "-t", exact(session), "@"+key, value)
	return err
}

func (t *Tmux) SessionOption(ctx context.Context, session, key string) (string, error) {
	out, err := t.tmux(ctx, "show-options", "show-options", "-q", "-v", "-t", exact(session), "@"+key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (t *Tmux) Probe(ctx context.Context, session string) error {
	_, err := t.tmux(ctx, "display-message", "display-message", "-p", "-t", exact(session), "#{session_name}")
	return err
}

// Attach switches the current client when running inside tmux and
// attaches the terminal otherwise.
func (t *Tmux) Attach(ctx context.Context, session string) error {
	if Inside() {
		_, err := t.tmux(ctx, "switch-client", "switch-client", "-t", exact(session))
		return err
	}
	if err := t.exec.ExecuteInteractive(ctx, "tmux", "attach-session", "-t", exact(session)); err != nil {
		return errors.ExternalTool("tmux", "attach-session", nil, err)
	}
	return nil
}

func (t *Tmux) AttachCommand(session string) string {
	return shellquote.Join("tmux", "attach-session", "-t", session)
}

// Inside reports whether the current process runs inside a tmux client.
func Inside() bool {
	return os.Getenv("TMUX") != ""
}

func lines(out []byte) []string {
	var result []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			result = append(result, line)
		}
	}
	return result
}
