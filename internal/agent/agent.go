// Package agent resolves the commands grove launches inside a workspace:
// the interactive coding assistant and the code editor. Resolution is an
// ordered list of probes over an Env; the first probe that succeeds wins.
package agent

import (
	"os"
	"path/filepath"

	"github.com/firefly-engineering/grove/internal/system"
)

// Env is the part of the host a probe may inspect.
type Env interface {
	LookPath(name string) (string, error)
	FileExists(path string) bool
	Getenv(key string) string
	HomeDir() string
}

// Command is a resolved invocation.
type Command struct {
	// Kind identifies the program, e.g. "claude" or "code".
	Kind string
	// Line is the shell command line to run.
	Line string
	// Source names the probe that produced it.
	Source string
}

// Probe inspects env and returns a command when it applies.
type Probe func(env Env) (Command, bool)

// Resolve runs probes in order and returns the first match.
func Resolve(env Env, probes ...Probe) (Command, bool) {
	for _, probe := range probes {
		if cmd, ok := probe(env); ok {
			return cmd, true
		}
	}
	return Command{}, false
}

// HostEnv is the Env of the running process.
type HostEnv struct {
	Exec system.CommandExecutor
}

// NewHostEnv returns an Env backed by the OS and exec's PATH lookup.
func NewHostEnv(exec system.CommandExecutor) *HostEnv {
	return &HostEnv{Exec: exec}
}

func (e *HostEnv) LookPath(name string) (string, error) {
	return e.Exec.LookPath(name)
}

func (e *HostEnv) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (e *HostEnv) Getenv(key string) string {
	return os.Getenv(key)
}

func (e *HostEnv) HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// MapEnv is a static Env for tests.
type MapEnv struct {
	Paths map[string]string
	Files map[string]bool
	Vars  map[string]string
	Home  string
}

func (e *MapEnv) LookPath(name string) (string, error) {
	if p, ok := e.Paths[name]; ok {
		return p, nil
	}
	return "", os.ErrNotExist
}

func (e *MapEnv) FileExists(path string) bool { return e.Files[filepath.Clean(path)] }

func (e *MapEnv) Getenv(key string) string { return e.Vars[key] }

func (e *MapEnv) HomeDir() string { return e.Home }
