package app

import (
	"context"
	"io"
	"os"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/health"
	"github.com/firefly-engineering/grove/internal/hooks"
	"github.com/firefly-engineering/grove/internal/lifecycle"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/multiplexer"
	"github.com/firefly-engineering/grove/internal/reconcile"
	"github.com/firefly-engineering/grove/internal/session"
	"github.com/firefly-engineering/grove/internal/system"
	"github.com/firefly-engineering/grove/internal/terminal"
	"github.com/firefly-engineering/grove/internal/workspace"
)

// App holds the application dependencies
type App struct {
	// Paths holds the resolved repository locations
	Paths *config.Paths

	// Config is the loaded repository configuration
	Config *config.Config

	Exec  system.CommandExecutor
	FS    system.FileSystem
	Env   agent.Env
	Mux   multiplexer.Multiplexer
	Store metadata.Store
	Term  terminal.Info

	// WorkDir is the directory grove was invoked from
	WorkDir string

	Stdin  io.Reader
	Stdout io.Writer
	Getenv func(string) string

	// SessionOptions tune the session orchestrator
	SessionOptions []session.Option

	Backend   workspace.Backend
	Registry  *workspace.Registry
	Sessions  *session.Orchestrator
	Hooks     *hooks.Runner
	Audit     *audit.Logger
	Nav       *terminal.Navigator
	Manager   *lifecycle.Manager
	Reconcile *reconcile.Engine
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths, skipping repository discovery
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithConfig sets the configuration instead of loading it
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithExecutor sets the command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Exec = exec
	}
}

// WithFS sets the file system
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithEnv sets the host environment used to resolve commands
func WithEnv(env agent.Env) Option {
	return func(a *App) {
		a.Env = env
	}
}

// WithMultiplexer sets the terminal multiplexer
func WithMultiplexer(mux multiplexer.Multiplexer) Option {
	return func(a *App) {
		a.Mux = mux
	}
}

// WithStore sets the metadata store
func WithStore(store metadata.Store) Option {
	return func(a *App) {
		a.Store = store
	}
}

// WithTerminal sets the detected terminal capabilities
func WithTerminal(info terminal.Info) Option {
	return func(a *App) {
		a.Term = info
	}
}

// WithWorkDir sets the invocation directory
func WithWorkDir(dir string) Option {
	return func(a *App) {
		a.WorkDir = dir
	}
}

// WithIO sets the streams used for prompts and shell handoff
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.Stdin = in
		a.Stdout = out
	}
}

// WithGetenv sets how environment variables are read
func WithGetenv(getenv func(string) string) Option {
	return func(a *App) {
		a.Getenv = getenv
	}
}

// WithSessionOptions passes options to the session orchestrator
func WithSessionOptions(opts ...session.Option) Option {
	return func(a *App) {
		a.SessionOptions = append(a.SessionOptions, opts...)
	}
}

// New creates a new App with the given options. Unless WithPaths is
// given, the repository is discovered from the working directory and
// its configuration loaded.
func New(ctx context.Context, opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.Exec == nil {
		a.Exec = system.DefaultExecutor()
	}
	if a.FS == nil {
		a.FS = system.DefaultFS()
	}
	if a.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		a.WorkDir = wd
	}
	if a.Stdin == nil {
		a.Stdin = os.Stdin
	}
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Getenv == nil {
		a.Getenv = os.Getenv
	}
	if a.Env == nil {
		a.Env = agent.NewHostEnv(a.Exec)
	}
	if a.Term == (terminal.Info{}) {
		a.Term = terminal.Detect()
	}

	if a.Paths == nil {
		root, common, err := config.DiscoverRepo(ctx, a.Exec, a.WorkDir)
		if err != nil {
			return nil, err
		}
		if a.Config == nil {
			cfg, err := config.Load(root)
			if err != nil {
				return nil, err
			}
			a.Config = cfg
		}
		a.Paths = config.NewPaths(root, common, a.Config)
	}
	if a.Config == nil {
		a.Config = config.Default()
	}

	if a.Store == nil {
		a.Store = metadata.NewGitConfigStore(a.Exec, a.Paths.RepoRoot)
	}
	if a.Mux == nil {
		a.Mux = multiplexer.NewTmux(a.Exec)
	}

	a.wire()
	return a, nil
}

// wire builds the components that depend on the injected ones.
func (a *App) wire() {
	a.Backend = workspace.NewGitBackend(a.Exec)
	a.Registry = workspace.NewRegistry(a.Exec, a.Paths.RepoRoot, a.Paths.WorkspaceRoot)
	sessionOpts := append([]session.Option{session.WithOwner(a.Paths.GitCommonDir)}, a.SessionOptions...)
	a.Sessions = session.New(a.Mux, a.Store, a.Env, a.Config, a.Paths.RepoName, sessionOpts...)
	a.Hooks = hooks.NewRunner(a.Exec)
	a.Audit = audit.NewLogger(a.Paths.StateDir)
	a.Nav = terminal.NewNavigator(a.FS, a.Getenv, a.Stdout)

	a.Manager = lifecycle.NewManager(lifecycle.Deps{
		Paths:    a.Paths,
		Config:   a.Config,
		Exec:     a.Exec,
		FS:       a.FS,
		Backend:  a.Backend,
		Registry: a.Registry,
		Store:    a.Store,
		Sessions: a.Sessions,
		Hooks:    a.Hooks,
		Audit:    a.Audit,
		Nav:      a.Nav,
		Env:      a.Env,
		Term:     a.Term,
		WorkDir:  a.WorkDir,
		Confirm:  lifecycle.ConfirmFrom(a.Stdin, a.Stdout),
	})
	a.Reconcile = reconcile.NewEngine(a.Paths, a.Registry, a.Backend, a.Store, a.Sessions, a.FS, a.Audit)
}

// Health returns a checker for the host tools grove depends on
func (a *App) Health() *health.Checker {
	return health.NewChecker(a.Exec, a.Env, a.Config)
}

// Default is the application instance used by the commands. It is
// created on first use.
var Default *App

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault clears the default application instance
func ResetDefault() {
	Default = nil
}
