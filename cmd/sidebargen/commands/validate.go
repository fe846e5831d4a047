package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/pipeline"
)

// ValidateCmd implements the 'validate' command: the full pipeline as a
// dry run, listing every unresolved reference and duplicate id.
type ValidateCmd struct {
	Strict bool `help:"Fail on any problem regardless of build.mode"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	var mode linkresolve.Mode
	if v.Strict {
		mode = linkresolve.ModeStrict
	}

	res, err := pipeline.NewBuilder(pipeline.WithLogger(g.Logger)).
		Run(g.Context, pipeline.Request{Config: cfg, Mode: mode, DryRun: true})
	printProblems(g.Out, res)
	if err != nil {
		return err
	}
	if res.Problems() == 0 {
		_, _ = fmt.Fprintf(g.Out, "OK: %d sidebars, %d documents\n", res.Registry.Len(), res.Documents)
	}
	return nil
}

func printProblems(w io.Writer, res *pipeline.Result) {
	for _, c := range res.Conflicts {
		_, _ = fmt.Fprintf(w, "conflict  %s: %v\n", c.ID, c.Paths)
	}
	if res.Report == nil {
		return
	}
	for _, b := range res.Report.Broken {
		_, _ = fmt.Fprintf(w, "broken    %s at %s\n", b.ID, b.Position)
	}
	if d := res.Report.Duplicates; d != nil {
		for _, id := range d.IDs {
			_, _ = fmt.Fprintf(w, "duplicate %s at %v\n", id, d.Occurrences[id])
		}
	}
}
