package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/doeshing/ytgenius/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.Options{Verbose: isVerbose()}

	if err := cli.Execute(ctx, opts, os.Args[1:]); err != nil {
		cli.PrintError(os.Stderr, err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

func isVerbose() bool {
	v := os.Getenv("YTGENIUS_DEBUG")
	return strings.EqualFold(v, "1") || strings.EqualFold(v, "true")
}
