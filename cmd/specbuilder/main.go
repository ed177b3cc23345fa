package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/specbuilder/cmd/specbuilder/commands"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("specbuilder"),
		kong.Description("Render, watch and live-preview a specification document."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = kctx.Run(&commands.Global{Context: ctx}, cli)
	cancel()

	os.Exit(ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err))
}
