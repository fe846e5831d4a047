package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sidebargen/cmd/sidebargen/commands"
	ferrors "git.home.luguber.info/inful/sidebargen/internal/foundation/errors"
	"git.home.luguber.info/inful/sidebargen/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	global := &commands.Global{Context: ctx, Out: os.Stdout, Err: os.Stderr}
	parser := kong.Parse(cli,
		kong.Name("sidebargen"),
		kong.Description("Generate docs-site sidebars from OpenAPI descriptions and hand-written sidebar configuration."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := parser.Run(cli); err != nil {
		cancel()
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
