package agent

import (
	"path/filepath"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// DefaultAssistant is launched when no agent is configured.
const DefaultAssistant = "claude"

// Editors probed on PATH when neither config nor environment names one.
var Editors = []string{"cursor", "code", "zed"}

// rcFiles maps a shell name to the rc file it reads interactively.
var rcFiles = map[string]string{
	"zsh":  ".zshrc",
	"bash": ".bashrc",
	"fish": filepath.Join(".config", "fish", "config.fish"),
}

// kind returns the program name of a command line.
func kind(line string) string {
	words, err := shellquote.Split(line)
	if err != nil || len(words) == 0 {
		return strings.TrimSpace(line)
	}
	return filepath.Base(words[0])
}

// Configured accepts an explicitly configured command line as is.
func Configured(line string) Probe {
	return func(env Env) (Command, bool) {
		line = strings.TrimSpace(line)
		if line == "" {
			return Command{}, false
		}
		return Command{Kind: kind(line), Line: line, Source: "config"}, true
	}
}

// LocalInstall finds the assistant's per-user install under
// ~/.claude/local.
func LocalInstall(name string) Probe {
	return func(env Env) (Command, bool) {
		home := env.HomeDir()
		if home == "" || name != DefaultAssistant {
			return Command{}, false
		}
		path := filepath.Join(home, ".claude", "local", name)
		if !env.FileExists(path) {
			return Command{}, false
		}
		return Command{Kind: name, Line: shellquote.Join(path), Source: "local install"}, true
	}
}

// ShellRC runs name through an interactive instance of the user's shell,
// so aliases and PATH tweaks from its rc file apply. It only applies when
// that rc file exists.
func ShellRC(name string) Probe {
	return func(env Env) (Command, bool) {
		shell := env.Getenv("SHELL")
		home := env.HomeDir()
		if shell == "" || home == "" {
			return Command{}, false
		}
		rc, ok := rcFiles[filepath.Base(shell)]
		if !ok {
			return Command{}, false
		}
		rcPath := filepath.Join(home, rc)
		if !env.FileExists(rcPath) {
			return Command{}, false
		}
		// An interactive shell reads the rc file before parsing name, so
		// aliases defined there expand.
		return Command{Kind: name, Line: shellquote.Join(shell, "-ic", name), Source: "shell rc"}, true
	}
}

// Bare runs name unchanged.
func Bare(name string) Probe {
	return func(env Env) (Command, bool) {
		return Command{Kind: name, Line: name, Source: "bare"}, true
	}
}

// EnvVar accepts the command named by an environment variable.
func EnvVar(key string) Probe {
	return func(env Env) (Command, bool) {
		line := strings.TrimSpace(env.Getenv(key))
		if line == "" {
			return Command{}, false
		}
		return Command{Kind: kind(line), Line: line, Source: "$" + key}, true
	}
}

// OnPath accepts the first name found on PATH.
func OnPath(names ...string) Probe {
	return func(env Env) (Command, bool) {
		for _, name := range names {
			if _, err := env.LookPath(name); err == nil {
				return Command{Kind: name, Line: name, Source: "PATH"}, true
			}
		}
		return Command{}, false
	}
}

// AssistantProbes is the resolution order for the coding assistant:
// configured program, known local install, user shell sourcing its rc
// file, bare command.
func AssistantProbes(configured string) []Probe {
	return []Probe{
		Configured(configured),
		LocalInstall(DefaultAssistant),
		ShellRC(DefaultAssistant),
		Bare(DefaultAssistant),
	}
}

// ResolveAssistant returns the assistant command. It always succeeds.
func ResolveAssistant(env Env, configured string) Command {
	cmd, _ := Resolve(env, AssistantProbes(configured)...)
	return cmd
}

// EditorProbes is the resolution order for the code editor: configured
// editor, $VISUAL, $EDITOR, then the first known editor on PATH.
func EditorProbes(configured string) []Probe {
	return []Probe{
		Configured(configured),
		EnvVar("VISUAL"),
		EnvVar("EDITOR"),
		OnPath(Editors...),
	}
}

// ResolveEditor returns the editor command, if any can be found.
func ResolveEditor(env Env, configured string) (Command, bool) {
	return Resolve(env, EditorProbes(configured)...)
}
