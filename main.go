package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"keycalc/internal/cli"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, Version); err != nil {
		stop()
		os.Exit(1)
	}
}
