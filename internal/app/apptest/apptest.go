// Package apptest builds an App around a throwaway git repository with an
// in-memory metadata store and a fake multiplexer.
package apptest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/multiplexer"
	"github.com/firefly-engineering/grove/internal/session"
	"github.com/firefly-engineering/grove/internal/terminal"
	"github.com/firefly-engineering/grove/internal/testutil"
)

// Env is a test App and the doubles behind it.
type Env struct {
	*app.App

	t      *testing.T
	Repo   string
	Fake   *multiplexer.Fake
	Memory *metadata.MemoryStore
	Out    *bytes.Buffer
	In     *bytes.Buffer
	CDFile string
}

// NewEnv creates a repository and an App rooted at it. A nil cfg means
// the defaults. The terminal is reported as interactive.
func NewEnv(t *testing.T, cfg *config.Config) *Env {
	t.Helper()
	repo := testutil.InitRepo(t)
	if cfg == nil {
		cfg = config.Default()
	}

	e := &Env{
		t:      t,
		Repo:   repo,
		Fake:   multiplexer.NewFake(),
		Memory: metadata.NewMemoryStore(),
		Out:    &bytes.Buffer{},
		In:     &bytes.Buffer{},
		CDFile: filepath.Join(t.TempDir(), "cd"),
	}

	a, err := app.New(context.Background(),
		app.WithWorkDir(repo),
		app.WithConfig(cfg),
		app.WithMultiplexer(e.Fake),
		app.WithStore(e.Memory),
		app.WithEnv(&agent.MapEnv{}),
		app.WithTerminal(terminal.Info{StdinTTY: true, StdoutTTY: true, Term: "xterm-256color"}),
		app.WithIO(e.In, e.Out),
		app.WithGetenv(func(key string) string {
			if key == terminal.CDFileEnv {
				return e.CDFile
			}
			return ""
		}),
		app.WithSessionOptions(
			session.WithPortChecker(func(int) bool { return true }),
			session.WithPolling(time.Millisecond, 10),
		),
	)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	e.App = a
	return e
}

// CD returns the last directory handed to the shell, or "".
func (e *Env) CD() string {
	e.t.Helper()
	data, err := os.ReadFile(e.CDFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// WorkspacePath returns the directory of the named workspace.
func (e *Env) WorkspacePath(name string) string {
	e.t.Helper()
	path, err := e.Paths.WorkspacePath(name)
	if err != nil {
		e.t.Fatalf("WorkspacePath(%q): %v", name, err)
	}
	return path
}

// Keys returns the metadata keys recorded for a workspace.
func (e *Env) Keys(name string) []string {
	var out []string
	for _, k := range e.Memory.Keys() {
		if strings.HasPrefix(k, "workspace."+name+".") {
			out = append(out, k)
		}
	}
	return out
}
