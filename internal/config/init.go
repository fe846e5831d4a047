package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
)

// Example returns the starter configuration written by Init.
func Example() *Config {
	return &Config{
		Content: ContentConfig{DocsDir: DefaultDocsDir},
		APIs: []APIConfig{{
			SidebarID: "apiReferenceSidebar",
			Spec:      "static/openapi.json",
			DocPrefix: "developers/api-reference",
			Overview:  true,
		}},
		Sidebars: []SidebarConfig{
			{ID: "developersSidebar", Items: []SidebarItem{
				{Type: ItemDoc, ID: "developers/index"},
				{Type: ItemCategory, Label: "Architecture", Items: []SidebarItem{
					{Type: ItemAutogenerated, Dir: "developers/architecture"},
				}},
			}},
			{ID: "guidesSidebar", Items: []SidebarItem{
				{Type: ItemAutogenerated, Dir: "guides"},
			}},
		},
		Navbar: []NavbarItem{
			{SidebarID: "developersSidebar", Label: "Developers", Position: DefaultNavbarSide},
			{SidebarID: "guidesSidebar", Label: "Guides", Position: DefaultNavbarSide},
			{SidebarID: "apiReferenceSidebar", Label: "API Explorer", Position: DefaultNavbarSide},
		},
		Build: BuildConfig{
			Mode:   linkresolve.ModeStrict,
			Output: DefaultOutput,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Init writes the example configuration to path, choosing YAML or TOML by
// extension. An existing file is only replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	data, err := Marshal(Example(), FormatFor(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal encodes cfg in the given syntax.
func Marshal(cfg *Config, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
