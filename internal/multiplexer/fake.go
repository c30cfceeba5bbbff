package multiplexer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	shellquote "github.com/kballard/go-shellquote"
)

// FakeSession is the state a Fake keeps per session.
type FakeSession struct {
	Dir      string
	Panes    int
	Splits   []Split
	Keys     map[int][]string
	Selected int
	Options  map[string]string
}

// Fake is an in-memory Multiplexer for tests.
type Fake struct {
	mu sync.Mutex

	Sessions map[string]*FakeSession
	Calls    []string
	Attached []string

	// Unavailable makes Available report false.
	Unavailable bool
	// Fail maps an operation name (e.g. "split-window") to the error it
	// returns.
	Fail map[string]error
	// LagPanes makes a new pane visible only after one PaneCount call has
	// still reported the old count.
	LagPanes bool

	pending map[string]int
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		Sessions: make(map[string]*FakeSession),
		Fail:     make(map[string]error),
		pending:  make(map[string]int),
	}
}

// AddSession registers a live session with one pane.
func (f *Fake) AddSession(name, dir string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sessions[name] = newFakeSession(dir)
}

// AddTaggedSession registers a live session carrying one user option.
func (f *Fake) AddTaggedSession(name, dir, key, value string) {
	f.AddSession(name, dir)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sessions[name].Options[key] = value
}

func newFakeSession(dir string) *FakeSession {
	return &FakeSession{Dir: dir, Panes: 1, Keys: make(map[int][]string), Options: make(map[string]string)}
}

// Session returns the state of a live session.
func (f *Fake) Session(name string) (*FakeSession, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Sessions[name]
	return s, ok
}

func (f *Fake) call(op, format string, args ...any) error {
	f.Calls = append(f.Calls, op+" "+fmt.Sprintf(format, args...))
	return f.Fail[op]
}

func (f *Fake) Type() Type { return TypeTmux }

func (f *Fake) Available() bool { return !f.Unavailable }

func (f *Fake) HasSession(ctx context.Context, session string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Sessions[session]
	return ok
}

func (f *Fake) ListSessions(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list-sessions", ""); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Sessions))
	for name := range f.Sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fake) NewSession(ctx context.Context, session, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("new-session", "%s %s", session, dir); err != nil {
		return err
	}
	if _, ok := f.Sessions[session]; ok {
		return fmt.Errorf("duplicate session: %s", session)
	}
	f.Sessions[session] = newFakeSession(dir)
	return nil
}

func (f *Fake) KillSession(ctx context.Context, session string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("kill-session", "%s", session); err != nil {
		return err
	}
	if _, ok := f.Sessions[session]; !ok {
		return fmt.Errorf("can't find session: %s", session)
	}
	delete(f.Sessions, session)
	delete(f.pending, session)
	return nil
}

func (f *Fake) SplitPane(ctx context.Context, session string, pane int, split Split, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("split-window", "%s:%d %s %s", session, pane, split, dir); err != nil {
		return err
	}
	s, ok := f.Sessions[session]
	if !ok {
		return fmt.Errorf("can't find session: %s", session)
	}
	if pane >= s.Panes+f.pending[session] {
		return fmt.Errorf("can't find pane: %d", pane)
	}
	s.Splits = append(s.Splits, split)
	if f.LagPanes {
		f.pending[session]++
	} else {
		s.Panes++
	}
	return nil
}

func (f *Fake) PaneCount(ctx context.Context, session string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list-panes", "%s", session); err != nil {
		return 0, err
	}
	s, ok := f.Sessions[session]
	if !ok {
		return 0, fmt.Errorf("can't find session: %s", session)
	}
	if f.pending[session] > 0 {
		f.pending[session]--
		s.Panes++
		return s.Panes - 1, nil
	}
	return s.Panes, nil
}

func (f *Fake) SendKeys(ctx context.Context, session string, pane int, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("send-keys", "%s:%d %s", session, pane, command); err != nil {
		return err
	}
	s, ok := f.Sessions[session]
	if !ok || pane >= s.Panes {
		return fmt.Errorf("can't find pane: %s:%d", session, pane)
	}
	s.Keys[pane] = append(s.Keys[pane], command)
	return nil
}

func (f *Fake) SelectPane(ctx context.Context, session string, pane int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("select-pane", "%s:%d", session, pane); err != nil {
		return err
	}
	s, ok := f.Sessions[session]
	if !ok || pane >= s.Panes {
		return fmt.Errorf("can't find pane: %s:%d", session, pane)
	}
	s.Selected = pane
	return nil
}

func (f *Fake) SetSessionOption(ctx context.Context, session, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("set-option", "%s @%s %s", session, key, value); err != nil {
		return err
	}
	s, ok := f.Sessions[session]
	if !ok {
		return fmt.Errorf("can't find session: %s", session)
	}
	s.Options[key] = value
	return nil
}

func (f *Fake) SessionOption(ctx context.Context, session, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("show-options", "%s @%s", session, key); err != nil {
		return "", err
	}
	s, ok := f.Sessions[session]
	if !ok {
		return "", fmt.Errorf("can't find session: %s", session)
	}
	return s.Options[key], nil
}

func (f *Fake) Probe(ctx context.Context, session string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("display-message", "%s", session); err != nil {
		return err
	}
	if _, ok := f.Sessions[session]; !ok {
		return fmt.Errorf("can't find session: %s", session)
	}
	return ctx.Err()
}

func (f *Fake) Attach(ctx context.Context, session string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("attach-session", "%s", session); err != nil {
		return err
	}
	f.Attached = append(f.Attached, session)
	return nil
}

func (f *Fake) AttachCommand(session string) string {
	return shellquote.Join("tmux", "attach-session", "-t", session)
}
