package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sidebargen/internal/pipeline"
	"git.home.luguber.info/inful/sidebargen/internal/testutil"
)

const sessionConfig = `content:
  docs_dir: docs
apis:
  - sidebar_id: apiReferenceSidebar
    spec: openapi.yaml
    doc_prefix: api
sidebars:
  - id: guidesSidebar
    items:
      - type: autogenerated
        dir: guides
build:
  output: build/sidebars.json
`

const sessionSpec = `info:
  title: Scenario
operations:
  - {id: a, method: get, path: /leads, tag: leads}
`

type outcome struct {
	res *pipeline.Result
	err error
}

func TestSessionRebuildsOnChange(t *testing.T) {
	t.Setenv("SIDEBARGEN_MODE", "")
	p := testutil.NewProject(t).WriteAll(map[string]string{
		"sidebargen.yaml":      sessionConfig,
		"openapi.yaml":         sessionSpec,
		"docs/api/a.md":        "# Leads\n",
		"docs/guides/intro.md": "# Introduction\n",
	})
	cfgPath := p.Path("sidebargen.yaml")

	builds := make(chan outcome, 16)
	s := &Session{
		ConfigPath: cfgPath,
		Builder:    pipeline.NewBuilder(pipeline.WithLogger(discard())),
		Debounce:   testDebounce,
		Logger:     discard(),
		OnBuild:    func(res *pipeline.Result, err error) { builds <- outcome{res, err} },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	next := func() outcome {
		t.Helper()
		select {
		case o := <-builds:
			return o
		case <-time.After(5 * time.Second):
			t.Fatal("no build within 5s")
			return outcome{}
		}
	}

	first := next()
	require.NoError(t, first.err)
	assert.Equal(t, pipeline.StatusSuccess, first.res.Status)
	p.AssertFileExists("build/sidebars.json")

	// Rewriting a file with the same bytes changes nothing.
	p.Write("docs/guides/intro.md", "# Introduction\n")
	assert.Equal(t, pipeline.StatusSkipped, next().res.Status)

	p.Write("docs/guides/setup.md", "# Setup\n")
	o := next()
	for o.res.Status == pipeline.StatusSkipped {
		o = next()
	}
	require.NoError(t, o.err)
	assert.Equal(t, pipeline.StatusSuccess, o.res.Status)
	assert.NotSame(t, first.res.Registry, o.res.Registry)
	p.AssertFileContains("build/sidebars.json", `"guides/setup"`)

	// A broken config keeps the previous one.
	p.Write("sidebargen.yaml", "content: [\n")
	assert.Equal(t, pipeline.StatusSkipped, next().res.Status)
}

func TestSessionMissingConfig(t *testing.T) {
	s := &Session{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"), Logger: discard()}
	err := s.Run(t.Context())
	require.ErrorIs(t, err, os.ErrNotExist)
}
