// Command portal is the command-line client and local gateway of the LinkUp
// internship platform.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"linkup/portal/internal/cli"
)

// Set at build time via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version)
	cli.SetBuildInfo(commit, buildTime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
