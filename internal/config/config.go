// Package config loads the sidebargen configuration from YAML or TOML.
package config

import (
	"time"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/retry"
)

// Config is the complete build configuration.
type Config struct {
	Content  ContentConfig   `yaml:"content" toml:"content"`
	APIs     []APIConfig     `yaml:"apis,omitempty" toml:"apis,omitempty"`
	Sidebars []SidebarConfig `yaml:"sidebars,omitempty" toml:"sidebars,omitempty"`
	Navbar   []NavbarItem    `yaml:"navbar,omitempty" toml:"navbar,omitempty"`
	Build    BuildConfig     `yaml:"build" toml:"build"`
	Logging  LoggingConfig   `yaml:"logging" toml:"logging"`

	// path of the file the config was loaded from, empty for in-memory configs
	source string
}

// ContentConfig locates the documentation corpus.
type ContentConfig struct {
	DocsDir    string   `yaml:"docs_dir" toml:"docs_dir"`
	Extensions []string `yaml:"extensions,omitempty" toml:"extensions,omitempty"`
}

// APIConfig turns one API description into a sidebar.
type APIConfig struct {
	SidebarID      string            `yaml:"sidebar_id" toml:"sidebar_id"`
	Spec           string            `yaml:"spec" toml:"spec"`
	DocPrefix      string            `yaml:"doc_prefix,omitempty" toml:"doc_prefix,omitempty"`
	Overview       bool              `yaml:"overview,omitempty" toml:"overview,omitempty"`
	CategoryLabels map[string]string `yaml:"category_labels,omitempty" toml:"category_labels,omitempty"`
}

// SidebarConfig declares a hand-written sidebar.
type SidebarConfig struct {
	ID    string        `yaml:"id" toml:"id"`
	Items []SidebarItem `yaml:"items" toml:"items"`
}

// NavbarItem links a navbar entry to a sidebar.
type NavbarItem struct {
	SidebarID string `yaml:"sidebar_id" toml:"sidebar_id"`
	Label     string `yaml:"label" toml:"label"`
	Position  string `yaml:"position,omitempty" toml:"position,omitempty"`
}

// BuildConfig controls the build run.
type BuildConfig struct {
	Mode        linkresolve.Mode `yaml:"mode,omitempty" toml:"mode,omitempty"`
	Concurrency int              `yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
	Output      string           `yaml:"output,omitempty" toml:"output,omitempty"`
	MetricsFile string           `yaml:"metrics_file,omitempty" toml:"metrics_file,omitempty"`
	HistoryDB   string           `yaml:"history_db,omitempty" toml:"history_db,omitempty"`
	Retry       RetryConfig      `yaml:"retry,omitempty" toml:"retry,omitempty"`
}

// RetryConfig controls retries of remote API description fetches.
type RetryConfig struct {
	Backoff    string        `yaml:"backoff,omitempty" toml:"backoff,omitempty"` // fixed|linear|exponential
	Initial    time.Duration `yaml:"initial,omitempty" toml:"initial,omitempty"`
	Max        time.Duration `yaml:"max,omitempty" toml:"max,omitempty"`
	MaxRetries *int          `yaml:"max_retries,omitempty" toml:"max_retries,omitempty"`
}

// Policy converts the section into a retry policy; unset fields keep the
// policy defaults.
func (r RetryConfig) Policy() retry.Policy {
	mode, _ := retry.ParseBackoffMode(r.Backoff)
	maxRetries := -1
	if r.MaxRetries != nil {
		maxRetries = *r.MaxRetries
	}
	return retry.NewPolicy(mode, r.Initial, r.Max, maxRetries)
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
}

// Source returns the file the configuration was loaded from.
func (c *Config) Source() string { return c.source }

// WatchPaths lists the local inputs of a build: the config file, every
// local API description and the docs directory.
func (c *Config) WatchPaths() []string {
	var out []string
	if c.source != "" {
		out = append(out, c.source)
	}
	for _, api := range c.APIs {
		if !isRemote(api.Spec) {
			out = append(out, api.Spec)
		}
	}
	if c.Content.DocsDir != "" {
		out = append(out, c.Content.DocsDir)
	}
	return out
}
