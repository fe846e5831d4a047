package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the syntax from a file extension; anything that is not
// .toml is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads, expands, defaults and validates the configuration at path.
// Relative paths inside the file are resolved against its directory.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.source = path
	if err := cfg.finalize(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data after expanding ${VAR} references. The result has
// no defaults applied.
func Parse(data []byte, format Format) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	return &cfg, nil
}

// Finalize applies defaults, environment overrides and validation to a
// config built in memory. Relative paths stay relative to the working
// directory.
func Finalize(cfg *Config) error {
	return cfg.finalize("")
}

func (c *Config) finalize(base string) error {
	if err := applyDefaults(c); err != nil {
		return err
	}
	if base != "" {
		c.resolvePaths(base)
	}
	if err := applyEnvOverrides(c); err != nil {
		return err
	}
	return ValidateConfig(c)
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Content.DocsDir = abs(c.Content.DocsDir)
	for i := range c.APIs {
		if !isRemote(c.APIs[i].Spec) {
			c.APIs[i].Spec = abs(c.APIs[i].Spec)
		}
	}
	c.Build.Output = abs(c.Build.Output)
	c.Build.MetricsFile = abs(c.Build.MetricsFile)
	c.Build.HistoryDB = abs(c.Build.HistoryDB)
}

func isRemote(spec string) bool {
	return strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://")
}
