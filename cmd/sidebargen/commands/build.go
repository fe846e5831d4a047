package commands

import (
	"fmt"
	"io"
	"time"

	"git.home.luguber.info/inful/sidebargen/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override build.output"`
	Mode   string `short:"m" help:"Override build.mode (strict|permissive)"`
	DryRun bool   `name:"dry-run" help:"Run every stage but write nothing"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Build.Output = b.Output
	}
	mode, err := parseModeFlag(b.Mode)
	if err != nil {
		return err
	}

	builder, closeFn, err := newBuilder(g, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := builder.Run(g.Context, pipeline.Request{Config: cfg, Mode: mode, DryRun: b.DryRun})
	if err != nil {
		return err
	}
	printSummary(g.Out, res)
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	sidebars := 0
	if res.Registry != nil {
		sidebars = res.Registry.Len()
	}
	_, _ = fmt.Fprintf(w, "Build %s: %s, %d sidebars, %d documents, %d problems (%s)\n",
		res.BuildID, res.Status, sidebars, res.Documents, res.Problems(), res.Duration.Round(time.Millisecond))
	if res.OutputPath != "" {
		_, _ = fmt.Fprintf(w, "Wrote %s\n", res.OutputPath)
	}
}
