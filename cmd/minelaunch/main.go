package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/TheDevelo/minelaunch/internal/cli"
)

// Version information (set by ldflags during build)
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
	BuiltBy = "unknown"
)

func main() {
	// The game shares our process group, so an interrupt reaches it
	// directly. We only stop starting new work.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	root := cli.NewRootCommand(Version, Commit, Date, BuiltBy)
	err := root.ExecuteContext(ctx)
	stop()

	os.Exit(cli.ExitCode(err, root.ErrOrStderr()))
}
