package commands

import (
	"time"

	"git.home.luguber.info/inful/sidebargen/internal/pipeline"
	"git.home.luguber.info/inful/sidebargen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Mode     string        `short:"m" help:"Override build.mode (strict|permissive)"`
	Debounce time.Duration `help:"Quiet window before a rebuild" default:"500ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	mode, err := parseModeFlag(w.Mode)
	if err != nil {
		return err
	}
	builder, closeFn, err := newBuilder(g, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	s := &watch.Session{
		ConfigPath: root.Config,
		Builder:    builder,
		Mode:       mode,
		Debounce:   w.Debounce,
		Logger:     g.Logger,
		OnBuild: func(res *pipeline.Result, err error) {
			if res.Status == pipeline.StatusSkipped {
				return
			}
			printSummary(g.Out, res)
			printProblems(g.Out, res)
		},
	}
	return s.Run(g.Context)
}
