package testutil

import (
	"embed"
	"path/filepath"

	"github.com/firefly-engineering/grove/internal/config"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadConfigFixture parses a config fixture without validating it. The
// format follows the file extension.
func LoadConfigFixture(name string) (*config.Config, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	return config.Parse(data, filepath.Ext(name) == ".toml")
}

// ValidConfig returns the valid JSON config fixture.
func ValidConfig() (*config.Config, error) {
	return LoadConfigFixture("valid_config.json")
}

// ValidTOMLConfig returns the valid TOML config fixture.
func ValidTOMLConfig() (*config.Config, error) {
	return LoadConfigFixture("valid_config.toml")
}

// InvalidConfig returns the invalid config fixture.
func InvalidConfig() (*config.Config, error) {
	return LoadConfigFixture("invalid_config.json")
}
