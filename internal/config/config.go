package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
)

const (
	JSONFileName = ".grove.json"
	TOMLFileName = ".grove.toml"

	DefaultAgent       = "claude"
	FallbackBaseBranch = "main"
	PortPlaceholder    = "{port}"

	DefaultPortStart = 3000
	DefaultPortEnd   = 3100
)

// Config is the repository-local grove configuration.
type Config struct {
	BaseBranch    string       `json:"baseBranch,omitempty" toml:"baseBranch,omitempty" yaml:"baseBranch,omitempty"`
	AIAgent       string       `json:"aiAgent,omitempty" toml:"aiAgent,omitempty" yaml:"aiAgent,omitempty"`
	CodeEditor    string       `json:"codeEditor,omitempty" toml:"codeEditor,omitempty" yaml:"codeEditor,omitempty"`
	BranchPrefix  string       `json:"branchPrefix,omitempty" toml:"branchPrefix,omitempty" yaml:"branchPrefix,omitempty"`
	ServerCommand string       `json:"serverCommand,omitempty" toml:"serverCommand,omitempty" yaml:"serverCommand,omitempty"`
	SessionHooks  SessionHooks `json:"sessionHooks" toml:"sessionHooks" yaml:"sessionHooks"`
	PortRange     PortRange    `json:"portRange" toml:"portRange" yaml:"portRange"`
	WorktreeRoot  string       `json:"worktreeRoot,omitempty" toml:"worktreeRoot,omitempty" yaml:"worktreeRoot,omitempty"`
}

// SessionHooks lists shell commands run around the workspace lifecycle.
type SessionHooks struct {
	OnStart []string `json:"onStart,omitempty" toml:"onStart,omitempty" yaml:"onStart,omitempty"`
	OnStop  []string `json:"onStop,omitempty" toml:"onStop,omitempty" yaml:"onStop,omitempty"`
}

// PortRange is the inclusive range dev-server ports are allocated from.
type PortRange struct {
	Start int `json:"start" toml:"start" yaml:"start"`
	End   int `json:"end" toml:"end" yaml:"end"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.PortRange.Start == 0 && c.PortRange.End == 0 {
		c.PortRange = PortRange{Start: DefaultPortStart, End: DefaultPortEnd}
	}
}

// Validate checks that the Config is valid.
func (c *Config) Validate() error {
	if c.PortRange.Start < 1 || c.PortRange.End > 65535 {
		return fmt.Errorf("portRange must lie within 1-65535 (got %d-%d)", c.PortRange.Start, c.PortRange.End)
	}
	if c.PortRange.Start > c.PortRange.End {
		return fmt.Errorf("portRange start %d is greater than end %d", c.PortRange.Start, c.PortRange.End)
	}
	if strings.ContainsAny(c.BranchPrefix, " \t\n~^:?*[\\") || strings.Contains(c.BranchPrefix, "..") {
		return fmt.Errorf("branchPrefix %q is not a valid branch name prefix", c.BranchPrefix)
	}
	if c.BaseBranch != "" && strings.ContainsAny(c.BaseBranch, " \t\n") {
		return fmt.Errorf("baseBranch %q must not contain whitespace", c.BaseBranch)
	}
	for i, hook := range c.SessionHooks.OnStart {
		if strings.TrimSpace(hook) == "" {
			return fmt.Errorf("sessionHooks.onStart[%d] is empty", i)
		}
	}
	for i, hook := range c.SessionHooks.OnStop {
		if strings.TrimSpace(hook) == "" {
			return fmt.Errorf("sessionHooks.onStop[%d] is empty", i)
		}
	}
	return nil
}

// Agent returns the configured assistant, or DefaultAgent. An empty
// AIAgent lets the assistant probes look for a local install.
func (c *Config) Agent() string {
	if c.AIAgent != "" {
		return c.AIAgent
	}
	return DefaultAgent
}

// Effective returns a copy with every implicit default made explicit.
func (c *Config) Effective() *Config {
	eff := *c
	eff.AIAgent = c.Agent()
	eff.applyDefaults()
	return &eff
}

// HasServer reports whether a dev-server command is configured.
func (c *Config) HasServer() bool {
	return strings.TrimSpace(c.ServerCommand) != ""
}

// ServerCommandFor returns the server command with the port substituted.
func (c *Config) ServerCommandFor(port int) string {
	return strings.ReplaceAll(c.ServerCommand, PortPlaceholder, fmt.Sprintf("%d", port))
}

// BranchName returns the branch name for a workspace.
func (c *Config) BranchName(workspace string) string {
	return c.BranchPrefix + workspace
}

// Find returns the config file present in dir, preferring JSON over TOML.
// The second result is false when neither exists.
func Find(dir string) (string, bool) {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return filepath.Join(dir, JSONFileName), false
}

// Load reads the configuration of the repository rooted at dir. A missing
// file yields the defaults.
func Load(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		logging.Debug("no config file found, using defaults", "dir", dir)
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a single config file. The format follows
// the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to read %s", path), err)
	}

	cfg, err := Parse(data, filepath.Ext(path) == ".toml")
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to parse %s", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("invalid config %s", path), err)
	}

	logging.Debug("loaded config", "path", path)
	return cfg, nil
}

// Parse decodes a config document. JSON input may carry comments and
// trailing commas.
func Parse(data []byte, isTOML bool) (*Config, error) {
	var cfg Config
	if isTOML {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	} else if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the configuration to path, as TOML when the extension is
// .toml and as indented JSON otherwise.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if filepath.Ext(path) == ".toml" {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	} else {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// YAML renders the effective configuration for display.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Effective())
}
