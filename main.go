package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gdrive-backup/cmd"
)

// main wires interrupt handling into the CLI and translates a failed
// command into a non-zero exit code. Everything else lives in the 'cmd'
// package.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
