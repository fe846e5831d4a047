package config

import (
	"runtime"
	"strings"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
)

// Default values applied when the configuration leaves a field empty.
const (
	DefaultDocsDir    = "docs"
	DefaultOutput     = "build/sidebars.json"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultNavbarSide = "left"
)

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

var defaultAppliers = []DefaultApplier{
	&ContentDefaultApplier{},
	&SidebarDefaultApplier{},
	&BuildDefaultApplier{},
	&LoggingDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// ContentDefaultApplier handles content defaults.
type ContentDefaultApplier struct{}

func (ContentDefaultApplier) Domain() string { return "content" }

func (ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.DocsDir == "" {
		cfg.Content.DocsDir = DefaultDocsDir
	}
	if len(cfg.Content.Extensions) == 0 {
		cfg.Content.Extensions = []string{".md", ".mdx"}
	}
	for i, ext := range cfg.Content.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Content.Extensions[i] = ext
	}
	return nil
}

// SidebarDefaultApplier infers item types, trims doc prefixes and fills
// navbar positions.
type SidebarDefaultApplier struct{}

func (SidebarDefaultApplier) Domain() string { return "sidebars" }

func (SidebarDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.APIs {
		cfg.APIs[i].DocPrefix = strings.Trim(cfg.APIs[i].DocPrefix, "/")
	}
	for i := range cfg.Sidebars {
		for j := range cfg.Sidebars[i].Items {
			cfg.Sidebars[i].Items[j].inferType()
		}
	}
	for i := range cfg.Navbar {
		if cfg.Navbar[i].Position == "" {
			cfg.Navbar[i].Position = DefaultNavbarSide
		}
	}
	return nil
}

// BuildDefaultApplier handles build defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	mode, err := linkresolve.ParseMode(string(cfg.Build.Mode))
	if err != nil {
		return err
	}
	cfg.Build.Mode = mode
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.Build.Output == "" {
		cfg.Build.Output = DefaultOutput
	}
	return nil
}

// LoggingDefaultApplier handles logging defaults.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	return nil
}
