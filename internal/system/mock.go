package system

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MockFS implements FileSystem for testing.
type MockFS struct {
	mu    sync.RWMutex
	files map[string]*mockFile
	dirs  map[string]bool

	// Error injection
	ReadFileErr  error
	WriteFileErr error
	RemoveAllErr error
	StatErr      error
	MkdirAllErr  error
	ReadDirErr   error
}

type mockFile struct {
	data []byte
	mode fs.FileMode
}

// NewMockFS creates a new MockFS with an empty filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string]*mockFile),
		dirs:  make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFS) AddFile(path string, data []byte, mode fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &mockFile{data: data, mode: mode}
	// Ensure parent directories exist
	dir := filepath.Dir(path)
	for dir != "." && dir != "/" {
		m.dirs[dir] = true
		dir = filepath.Dir(dir)
	}
}

// AddDir adds a directory to the mock filesystem.
func (m *MockFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
}

// GetFile returns the contents of a file in the mock filesystem.
func (m *MockFS) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, false
	}
	return f.data, true
}

func (m *MockFS) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return f.data, nil
}

func (m *MockFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if m.WriteFileErr != nil {
		return m.WriteFileErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &mockFile{data: data, mode: perm}
	return nil
}

func (m *MockFS) RemoveAll(path string) error {
	if m.RemoveAllErr != nil {
		return m.RemoveAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Remove all files and dirs with this prefix
	for p := range m.files {
		if p == path || hasPathPrefix(p, path) {
			delete(m.files, p)
		}
	}
	for p := range m.dirs {
		if p == path || hasPathPrefix(p, path) {
			delete(m.dirs, p)
		}
	}
	return nil
}

func (m *MockFS) Stat(path string) (fs.FileInfo, error) {
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if f, ok := m.files[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), size: int64(len(f.data)), mode: f.mode}, nil
	}
	if _, ok := m.dirs[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), isDir: true, mode: fs.ModeDir | 0755}, nil
	}
	return nil, fs.ErrNotExist
}

func (m *MockFS) MkdirAll(path string, perm fs.FileMode) error {
	if m.MkdirAllErr != nil {
		return m.MkdirAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Create all directories in the path
	current := path
	for current != "." && current != "/" {
		m.dirs[current] = true
		current = filepath.Dir(current)
	}
	return nil
}

func (m *MockFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, fileOk := m.files[path]
	_, dirOk := m.dirs[path]
	return fileOk || dirOk
}

func (m *MockFS) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.dirs[path]
	return ok
}

func (m *MockFS) ReadDir(path string) ([]fs.DirEntry, error) {
	if m.ReadDirErr != nil {
		return nil, m.ReadDirErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.dirs[path]; !ok {
		// Check if it's the root or a path that has children
		hasChildren := false
		for p := range m.files {
			if hasPathPrefix(p, path) {
				hasChildren = true
				break
			}
		}
		if !hasChildren {
			return nil, fs.ErrNotExist
		}
	}

	entries := make(map[string]fs.DirEntry)

	// Find direct children
	for p, f := range m.files {
		if dir := filepath.Dir(p); dir == path {
			name := filepath.Base(p)
			entries[name] = &mockDirEntry{name: name, mode: f.mode}
		}
	}
	for p := range m.dirs {
		if dir := filepath.Dir(p); dir == path {
			name := filepath.Base(p)
			entries[name] = &mockDirEntry{name: name, isDir: true, mode: fs.ModeDir | 0755}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}

// hasPathPrefix checks if path has the given prefix as a path component.
func hasPathPrefix(path, prefix string) bool {
	if len(path) <= len(prefix) {
		return false
	}
	return path[:len(prefix)] == prefix && path[len(prefix)] == '/'
}

// mockFileInfo implements fs.FileInfo for testing.
type mockFileInfo struct {
	name  string
	size  int64
	mode  fs.FileMode
	isDir bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return time.Now() }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry for testing.
type mockDirEntry struct {
	name  string
	mode  fs.FileMode
	isDir bool
}

func (m *mockDirEntry) Name() string               { return m.name }
func (m *mockDirEntry) IsDir() bool                { return m.isDir }
func (m *mockDirEntry) Type() fs.FileMode          { return m.mode.Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return &mockFileInfo{name: m.name, mode: m.mode, isDir: m.isDir}, nil }

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []MockCommand

	// Responses maps command prefixes to responses.
	// Key format: "command arg1 arg2..."; the longest matching prefix wins.
	Responses map[string]MockResponse

	// Handler, if set, is consulted before Responses. Returning false
	// falls through to the static responses.
	Handler func(name string, args []string) (MockResponse, bool)

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// Paths maps executable names to LookPath results. Names that are
	// absent are reported as not found.
	Paths map[string]string

	// InteractiveErr is returned by ExecuteInteractive if set.
	InteractiveErr error
}

// MockCommand records an executed command.
type MockCommand struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// String returns the command line joined by spaces.
func (c MockCommand) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Output []byte
	Err    error
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:  make([]MockCommand, 0),
		Responses: make(map[string]MockResponse),
		Paths:     make(map[string]string),
	}
}

// AddResponse adds a response for a specific command prefix.
func (m *MockExecutor) AddResponse(pattern string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Output: output, Err: err}
}

// AddPath registers an executable for LookPath.
func (m *MockExecutor) AddPath(name, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths[name] = path
}

// respond must be called with m.mu held.
func (m *MockExecutor) respond(name string, args []string) ([]byte, error) {
	if m.Handler != nil {
		if resp, ok := m.Handler(name, args); ok {
			return resp.Output, resp.Err
		}
	}
	for i := len(args); i >= 0; i-- {
		key := strings.Join(append([]string{name}, args[:i]...), " ")
		if resp, ok := m.Responses[key]; ok {
			return resp.Output, resp.Err
		}
	}
	return m.DefaultResponse.Output, m.DefaultResponse.Err
}

func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{Name: name, Args: args})
	return m.respond(name, args)
}

func (m *MockExecutor) ExecuteIn(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{Name: name, Args: args, Dir: dir, Env: env})
	return m.respond(name, args)
}

func (m *MockExecutor) ExecuteInteractive(ctx context.Context, name string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{Name: name, Args: args})

	if m.InteractiveErr != nil {
		return m.InteractiveErr
	}
	return nil
}

func (m *MockExecutor) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("mock: %s: executable file not found in $PATH", name)
}

// LastCommand returns the most recently executed command.
func (m *MockExecutor) LastCommand() (MockCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return MockCommand{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// CommandsMatching returns the recorded commands whose command line starts
// with prefix.
func (m *MockExecutor) CommandsMatching(prefix string) []MockCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCommand
	for _, c := range m.Commands {
		if strings.HasPrefix(c.String(), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears all recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]MockCommand, 0)
}

// MockExitError is an error carrying a process exit status, as returned by
// a command that ran and failed.
type MockExitError struct {
	Code int
}

func (e *MockExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode returns the exit status.
func (e *MockExitError) ExitCode() int { return e.Code }
