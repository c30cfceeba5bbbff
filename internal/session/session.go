package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/multiplexer"
	"github.com/firefly-engineering/grove/internal/port"
	"github.com/firefly-engineering/grove/internal/terminal"
)

// Defaults for waiting on tmux and probing before attach.
const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultPollAttempts = 40
	DefaultProbeTimeout = 3 * time.Second
)

// OwnerOption is the tmux user option recording which repository created a
// session.
const OwnerOption = "grove-owner"

// unsafeChars are rejected by tmux in session names or used as target
// separators.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Name derives the tmux session name of a workspace.
func Name(repo, workspace string) string {
	return Prefix(repo) + token(workspace)
}

// Prefix is the session name prefix shared by every workspace of a
// repository.
func Prefix(repo string) string {
	return token(repo) + "_"
}

// token makes s usable in a session name. When characters had to be
// replaced, a short hash of s is appended so that "a.b" and "a-b" differ.
func token(s string) string {
	safe := unsafeChars.ReplaceAllString(s, "-")
	if safe == s {
		return s
	}
	sum := sha256.Sum256([]byte(s))
	return safe + "-" + hex.EncodeToString(sum[:4])
}

// Options are the per-launch settings.
type Options struct {
	Horizontal  bool
	DisplayName string
	Description string
}

// Orchestrator builds, inspects and tears down workspace sessions.
type Orchestrator struct {
	mux   multiplexer.Multiplexer
	store metadata.Store
	env   agent.Env
	cfg   *config.Config
	repo  string
	owner string

	portFree     port.Checker
	pollInterval time.Duration
	pollAttempts int
	probeTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPortChecker overrides how free ports are detected.
func WithPortChecker(c port.Checker) Option {
	return func(o *Orchestrator) { o.portFree = c }
}

// WithOwner sets the value sessions are tagged with, normally the git
// common dir. It defaults to the repository name.
func WithOwner(id string) Option {
	return func(o *Orchestrator) { o.owner = id }
}

// WithPolling sets how pane creation is awaited.
func WithPolling(interval time.Duration, attempts int) Option {
	return func(o *Orchestrator) {
		o.pollInterval = interval
		o.pollAttempts = attempts
	}
}

// WithProbeTimeout bounds the reachability probe before attach.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.probeTimeout = d }
}

// New creates an Orchestrator for the repository named repo.
func New(mux multiplexer.Multiplexer, store metadata.Store, env agent.Env, cfg *config.Config, repo string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		mux:          mux,
		store:        store,
		env:          env,
		cfg:          cfg,
		repo:         repo,
		owner:        repo,
		portFree:     port.ListenCheck,
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Available reports whether the multiplexer can be used at all.
func (o *Orchestrator) Available() bool {
	return o.mux.Available()
}

// SessionName returns the session name of a workspace.
func (o *Orchestrator) SessionName(workspace string) string {
	return Name(o.repo, workspace)
}

// Prefix returns the session prefix of the repository.
func (o *Orchestrator) Prefix() string {
	return Prefix(o.repo)
}

// Launch creates the session of a workspace rooted at dir and records it.
// On any failure after the session exists, the session is killed and the
// record cleared before the error is returned.
func (o *Orchestrator) Launch(ctx context.Context, workspace, dir string, opts Options) (*metadata.Session, error) {
	name := o.SessionName(workspace)
	layout := PlanLayout(opts.Horizontal, o.cfg.HasServer())

	if o.mux.HasSession(ctx, name) {
		if !o.owns(ctx, name) {
			return nil, errors.New(errors.KindConflict, fmt.Sprintf("tmux session %s exists and was not created for this repository", name)).
				WithHint("rename or kill it with: tmux kill-session -t %s", name)
		}
		logging.Debug("replacing existing session", "session", name)
		if err := o.mux.KillSession(ctx, name); err != nil {
			return nil, err
		}
	}

	if err := o.mux.NewSession(ctx, name, dir); err != nil {
		return nil, err
	}

	sess, err := o.configure(ctx, workspace, name, dir, layout, opts)
	if err != nil {
		if killErr := o.mux.KillSession(ctx, name); killErr != nil {
			logging.Warn("failed to kill half-built session", "session", name, "error", killErr)
		}
		if clearErr := metadata.ClearSession(ctx, o.store, workspace); clearErr != nil {
			logging.Warn("failed to clear session record", "workspace", workspace, "error", clearErr)
		}
		return nil, err
	}
	return sess, nil
}

func (o *Orchestrator) configure(ctx context.Context, workspace, name, dir string, layout Layout, opts Options) (*metadata.Session, error) {
	if err := o.mux.SetSessionOption(ctx, name, OwnerOption, o.owner); err != nil {
		return nil, err
	}

	for i, s := range layout.splits() {
		if err := o.mux.SplitPane(ctx, name, s.pane, s.orientation, dir); err != nil {
			return nil, err
		}
		if err := o.waitPanes(ctx, name, i+2); err != nil {
			return nil, err
		}
	}

	assistant := agent.ResolveAssistant(o.env, o.cfg.AIAgent)
	logging.Debug("resolved assistant", "line", assistant.Line, "source", assistant.Source)
	if err := o.mux.SendKeys(ctx, name, layout.AgentPane, assistant.Line); err != nil {
		return nil, err
	}

	if err := o.mux.SendKeys(ctx, name, TerminalPane, "clear"); err != nil {
		return nil, err
	}
	if err := o.mux.SelectPane(ctx, name, TerminalPane); err != nil {
		return nil, err
	}

	sess := &metadata.Session{
		TmuxSession: name,
		AgentPane:   layout.AgentPane,
		AgentKind:   assistant.Kind,
		DisplayName: opts.DisplayName,
		Description: opts.Description,
		ServerPane:  layout.ServerPane,
	}

	if sess.HasServer() {
		if p, ok := o.allocatePort(ctx, workspace); ok {
			if err := o.mux.SendKeys(ctx, name, layout.ServerPane, o.cfg.ServerCommandFor(p)); err != nil {
				return nil, err
			}
			sess.ServerPort = p
		}
	}

	if err := metadata.SaveSession(ctx, o.store, workspace, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// allocatePort picks a dev-server port. A workspace may reuse the port it
// recorded before.
func (o *Orchestrator) allocatePort(ctx context.Context, workspace string) (int, bool) {
	used, err := metadata.ServerPorts(ctx, o.store)
	if err != nil {
		logging.UserWarning("Could not read allocated ports: %v", err)
		return 0, false
	}
	for p, owner := range used {
		if owner == workspace {
			delete(used, p)
		}
	}
	p, err := port.Allocate(o.cfg.PortRange, used, o.portFree)
	if err != nil {
		logging.UserWarning("Dev server not started: %v", err)
		return 0, false
	}
	return p, true
}

// waitPanes polls until the session has at least n panes.
func (o *Orchestrator) waitPanes(ctx context.Context, session string, n int) error {
	var count int
	for attempt := 0; attempt < o.pollAttempts; attempt++ {
		c, err := o.mux.PaneCount(ctx, session)
		if err != nil {
			return err
		}
		if count = c; count >= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.pollInterval):
		}
	}
	return errors.New(errors.KindExternalTool, fmt.Sprintf("tmux session %s has %d panes, expected %d", session, count, n))
}

// Status is the observed state of a workspace session.
type Status struct {
	Record *metadata.Session
	Alive  bool
}

// Recorded reports whether metadata names a session.
func (s Status) Recorded() bool { return s.Record != nil }

// Stale reports whether the recorded session is gone.
func (s Status) Stale() bool { return s.Record != nil && !s.Alive }

// Inspect reads the session record of a workspace and checks liveness.
func (o *Orchestrator) Inspect(ctx context.Context, workspace string) (Status, error) {
	rec, ok, err := metadata.LoadSession(ctx, o.store, workspace)
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{}, nil
	}
	return Status{Record: rec, Alive: o.alive(ctx, rec.TmuxSession)}, nil
}

// owns reports whether the session carries this repository's owner tag.
func (o *Orchestrator) owns(ctx context.Context, session string) bool {
	v, err := o.mux.SessionOption(ctx, session, OwnerOption)
	return err == nil && v == o.owner
}

// alive reports whether session is live and was created by this repository.
func (o *Orchestrator) alive(ctx context.Context, session string) bool {
	return o.mux.HasSession(ctx, session) && o.owns(ctx, session)
}

// IsAlive reports whether a live session is recorded for the workspace.
func (o *Orchestrator) IsAlive(ctx context.Context, workspace string) bool {
	st, err := o.Inspect(ctx, workspace)
	return err == nil && st.Alive
}

// Attach connects the terminal to session. It returns false without error
// when the terminal cannot host a client, after printing the manual
// command.
func (o *Orchestrator) Attach(ctx context.Context, session string, term terminal.Info) (bool, error) {
	if !term.CanAttach() {
		logging.UserInfo("Attach with: %s", o.mux.AttachCommand(session))
		return false, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, o.probeTimeout)
	defer cancel()
	if err := o.mux.Probe(probeCtx, session); err != nil {
		logging.UserWarning("Session %s is not reachable: %v", session, err)
		logging.UserInfo("Attach with: %s", o.mux.AttachCommand(session))
		return false, nil
	}

	if err := o.mux.Attach(ctx, session); err != nil {
		return false, err
	}
	return true, nil
}

// AttachCommand returns the manual attach command of a session.
func (o *Orchestrator) AttachCommand(session string) string {
	return o.mux.AttachCommand(session)
}

// Teardown kills the workspace session, if alive, and clears its record.
func (o *Orchestrator) Teardown(ctx context.Context, workspace string) error {
	names := []string{o.SessionName(workspace)}
	if rec, ok, err := metadata.LoadSession(ctx, o.store, workspace); err == nil && ok && rec.TmuxSession != names[0] {
		names = append(names, rec.TmuxSession)
	}

	var firstErr error
	for _, name := range names {
		if !o.alive(ctx, name) {
			continue
		}
		if err := o.mux.KillSession(ctx, name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := metadata.ClearSession(ctx, o.store, workspace); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Kill terminates a session of this repository by name. Sessions of other
// repositories are left alone.
func (o *Orchestrator) Kill(ctx context.Context, session string) error {
	if !o.alive(ctx, session) {
		return nil
	}
	return o.mux.KillSession(ctx, session)
}

// Live returns the live sessions that belong to this repository: those
// named with its prefix and tagged with its owner.
func (o *Orchestrator) Live(ctx context.Context) ([]string, error) {
	all, err := o.mux.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	prefix := o.Prefix()
	var out []string
	for _, s := range all {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) && o.owns(ctx, s) {
			out = append(out, s)
		}
	}
	return out, nil
}
