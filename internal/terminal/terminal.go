// Package terminal provides host terminal detection and the helpers that
// talk to the user's shell.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"golang.org/x/term"

	"github.com/firefly-engineering/grove/internal/system"
)

// CDFileEnv names the file the shell integration reads the target
// directory from.
const CDFileEnv = "GROVE_CD_FILE"

// Info describes the terminal the process runs in.
type Info struct {
	StdinTTY  bool
	StdoutTTY bool
	Term      string
}

// Detect inspects the process's standard streams and TERM.
func Detect() Info {
	return Info{
		StdinTTY:  term.IsTerminal(int(os.Stdin.Fd())),
		StdoutTTY: term.IsTerminal(int(os.Stdout.Fd())),
		Term:      os.Getenv("TERM"),
	}
}

// RecognizedTerm reports whether TERM names a usable terminal.
func RecognizedTerm(t string) bool {
	t = strings.TrimSpace(t)
	return t != "" && t != "dumb"
}

// Interactive reports whether both streams are terminals.
func (i Info) Interactive() bool {
	return i.StdinTTY && i.StdoutTTY
}

// CanAttach reports whether a multiplexer client can take over the
// terminal.
func (i Info) CanAttach() bool {
	return i.Interactive() && RecognizedTerm(i.Term)
}

// Navigator moves the user's shell into a directory.
// A child process cannot change its parent's working directory, so the
// target is handed to the shell integration through GROVE_CD_FILE, or
// printed as a cd command when no integration is installed.
type Navigator struct {
	fs     system.FileSystem
	getenv func(string) string
	out    io.Writer
}

// NewNavigator creates a Navigator printing fallbacks to out.
func NewNavigator(fs system.FileSystem, getenv func(string) string, out io.Writer) *Navigator {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Navigator{fs: fs, getenv: getenv, out: out}
}

// ChangeDir hands dir to the shell.
func (n *Navigator) ChangeDir(dir string) error {
	if file := n.getenv(CDFileEnv); file != "" {
		if err := n.fs.WriteFile(file, []byte(dir+"\n"), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", CDFileEnv, err)
		}
		return nil
	}
	_, err := fmt.Fprintf(n.out, "cd %s\n", shellquote.Join(dir))
	return err
}

// Confirm asks a yes/no question and defaults to no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	switch strings.ToLower(ReadLine(in, out, prompt+" [y/N] ")) {
	case "y", "yes":
		return true
	}
	return false
}

// ReadLine prints label and returns the next trimmed line of in. It reads
// one byte at a time so later prompts on the same reader see the rest.
func ReadLine(in io.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err != nil {
			if len(line) == 0 {
				fmt.Fprintln(out)
			}
			break
		}
	}
	return strings.TrimSpace(string(line))
}
