package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/retry"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

const yamlConfig = `
content:
  docs_dir: docs
  extensions: [md, ".MDX"]
apis:
  - sidebar_id: apiReferenceSidebar
    spec: static/openapi.json
    doc_prefix: /developers/api-reference/
    overview: true
    category_labels:
      leads: Leads
  - sidebar_id: remoteSidebar
    spec: https://example.com/openapi.yaml
sidebars:
  - id: developersSidebar
    items:
      - developers/index
      - type: category
        label: Architecture
        items:
          - dir: developers/architecture
      - id: developers/faq
        label: FAQ
navbar:
  - sidebar_id: developersSidebar
    label: Developers
build:
  mode: warn
  concurrency: 2
  metrics_file: out/metrics.prom
  retry:
    backoff: exponential
    initial: 250ms
    max_retries: 4
`

func TestLoadYAML(t *testing.T) {
	t.Setenv(EnvMode, "")
	path := writeConfig(t, "sidebargen.yaml", yamlConfig)
	base := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source())
	assert.Equal(t, filepath.Join(base, "docs"), cfg.Content.DocsDir)
	assert.Equal(t, []string{".md", ".mdx"}, cfg.Content.Extensions)

	require.Len(t, cfg.APIs, 2)
	assert.Equal(t, filepath.Join(base, "static/openapi.json"), cfg.APIs[0].Spec)
	assert.Equal(t, "developers/api-reference", cfg.APIs[0].DocPrefix)
	assert.True(t, cfg.APIs[0].Overview)
	assert.Equal(t, map[string]string{"leads": "Leads"}, cfg.APIs[0].CategoryLabels)
	assert.Equal(t, "https://example.com/openapi.yaml", cfg.APIs[1].Spec)

	require.Len(t, cfg.Sidebars, 1)
	assert.Equal(t, []SidebarItem{
		{Type: ItemDoc, ID: "developers/index"},
		{Type: ItemCategory, Label: "Architecture", Items: []SidebarItem{
			{Type: ItemAutogenerated, Dir: "developers/architecture"},
		}},
		{Type: ItemDoc, ID: "developers/faq", Label: "FAQ"},
	}, cfg.Sidebars[0].Items)

	assert.Equal(t, []NavbarItem{{SidebarID: "developersSidebar", Label: "Developers", Position: "left"}}, cfg.Navbar)

	assert.Equal(t, linkresolve.ModePermissive, cfg.Build.Mode)
	assert.Equal(t, 2, cfg.Build.Concurrency)
	assert.Equal(t, filepath.Join(base, DefaultOutput), cfg.Build.Output)
	assert.Equal(t, filepath.Join(base, "out/metrics.prom"), cfg.Build.MetricsFile)
	assert.Empty(t, cfg.Build.HistoryDB)
	assert.Equal(t, retry.Policy{
		Mode:       retry.BackoffExponential,
		Initial:    250 * time.Millisecond,
		Max:        30 * time.Second,
		MaxRetries: 4,
	}, cfg.Build.Retry.Policy())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.Equal(t, []string{
		path,
		filepath.Join(base, "static/openapi.json"),
		filepath.Join(base, "docs"),
	}, cfg.WatchPaths())
}

const tomlConfig = `
[content]
docs_dir = "docs"

[[apis]]
sidebar_id = "apiReferenceSidebar"
spec = "openapi.yaml"

[[sidebars]]
id = "guidesSidebar"
items = [
  "guides/intro",
  { type = "category", label = "Advanced", items = [ { dir = "guides/advanced" } ] },
]

[[sidebars]]
id = "workflowsSidebar"

[[sidebars.items]]
label = "Workflows"

[[sidebars.items.items]]
id = "workflows/deploy"

[build]
history_db = "state/history.db"

[logging]
level = "DEBUG"
format = "pretty"
`

func TestLoadTOML(t *testing.T) {
	t.Setenv(EnvMode, "")
	path := writeConfig(t, "sidebargen.toml", tomlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Sidebars, 2)
	assert.Equal(t, []SidebarItem{
		{Type: ItemDoc, ID: "guides/intro"},
		{Type: ItemCategory, Label: "Advanced", Items: []SidebarItem{
			{Type: ItemAutogenerated, Dir: "guides/advanced"},
		}},
	}, cfg.Sidebars[0].Items)
	assert.Equal(t, []SidebarItem{
		{Type: ItemCategory, Label: "Workflows", Items: []SidebarItem{
			{Type: ItemDoc, ID: "workflows/deploy"},
		}},
	}, cfg.Sidebars[1].Items)

	assert.Equal(t, linkresolve.ModeStrict, cfg.Build.Mode)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Build.Concurrency)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "state/history.db"), cfg.Build.HistoryDB)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "pretty", cfg.Logging.Format)
	assert.Equal(t, retry.DefaultPolicy(), cfg.Build.Retry.Policy())
}

func TestLoadTOMLRejectsBadItem(t *testing.T) {
	path := writeConfig(t, "bad.toml", `
[[apis]]
sidebar_id = "a"
spec = "a.yaml"

[[sidebars]]
id = "s"
items = [ 42 ]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected string or table")
}

func TestLoadExpandsEnvAndDotEnv(t *testing.T) {
	t.Setenv(EnvMode, "")
	path := writeConfig(t, "sidebargen.yaml", `
content:
  docs_dir: ${SIDEBARGEN_TEST_DOCS_DIR}
sidebars:
  - id: s
    items: [intro]
`)
	dir := filepath.Dir(path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIDEBARGEN_TEST_DOCS_DIR=site-docs\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SIDEBARGEN_TEST_DOCS_DIR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "site-docs"), cfg.Content.DocsDir)
}

func TestModeEnvOverride(t *testing.T) {
	path := writeConfig(t, "sidebargen.yaml", "sidebars:\n  - id: s\n    items: [a]\nbuild:\n  mode: strict\n")

	t.Setenv(EnvMode, "permissive")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, linkresolve.ModePermissive, cfg.Build.Mode)

	t.Setenv(EnvMode, "sometimes")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Setenv(EnvMode, "")
	cfg := &Config{
		APIs: []APIConfig{{SidebarID: "dup", Spec: ""}},
		Sidebars: []SidebarConfig{
			{ID: "dup", Items: []SidebarItem{{Type: ItemCategory, Label: "Empty"}}},
			{ID: "other", Items: []SidebarItem{{Type: "link"}, {Type: ItemAutogenerated, Dir: "../outside"}}},
		},
		Navbar:  []NavbarItem{{SidebarID: "dup", Label: "", Position: "middle"}},
		Build:   BuildConfig{Retry: RetryConfig{Backoff: "random"}},
		Logging: LoggingConfig{Level: "loud"},
	}
	err := Finalize(cfg)
	require.Error(t, err)

	for _, want := range []string{
		"apis[0]: spec is required",
		`sidebars[0]: duplicate sidebar id "dup" (already declared by apis[0])`,
		`sidebars[0].items[0]: category "Empty" has no items`,
		`sidebars[1].items[0]: unknown item type "link"`,
		`sidebars[1].items[1]: autogenerated dir "../outside"`,
		"navbar[0]: label is required",
		`navbar[0]: position must be left or right, got "middle"`,
		"build.retry.backoff",
		"logging.level",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRequiresSomeSidebar(t *testing.T) {
	t.Setenv(EnvMode, "")
	err := Finalize(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of apis or sidebars")
}

func TestInitWritesLoadableConfig(t *testing.T) {
	t.Setenv(EnvMode, "")
	for _, name := range []string{"sidebargen.yaml", "sidebargen.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "conf", name)
			require.NoError(t, Init(path, false))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Len(t, cfg.Sidebars, 2)
			assert.Equal(t, "apiReferenceSidebar", cfg.APIs[0].SidebarID)
			assert.Equal(t, Example().Sidebars[0].Items, cfg.Sidebars[0].Items)

			err = Init(path, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "already exists")
			require.NoError(t, Init(path, true))
		})
	}
}
