package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/sidebargen/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of builds to list (0 for all)" default:"10"`
	JSON  bool `help:"Print builds as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if cfg.Build.HistoryDB == "" {
		return ferrors.ConfigError("build.history_db is not configured").Build()
	}
	store, err := openHistory(cfg.Build.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builds, err := store.Recent(g.Context, h.Limit)
	if err != nil {
		return ferrors.HistoryError("list builds").WithCause(err).Build()
	}

	if h.JSON {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No builds recorded")
		return nil
	}
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tID\tOUTCOME\tMODE\tSIDEBARS\tDOCS\tPROBLEMS\tDURATION")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			b.StartedAt.Local().Format(time.DateTime), b.ID, b.Outcome, b.Mode,
			len(b.Sidebars), b.Documents(), b.Problems, b.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}
